package schedulekey

import "testing"

func TestGenerateGroupName(t *testing.T) {
	cases := []struct {
		name  string
		days  []string
		start string
		want  string
	}{
		{
			name:  "два дня, вечер",
			days:  []string{"sat", "mon"},
			start: "16:00",
			want:  "SAT/MON 4 PM",
		},
		{
			name:  "утро без ведущего нуля",
			days:  []string{"sun"},
			start: "09:00",
			want:  "SUN 9 AM",
		},
		{
			name:  "полдень",
			days:  []string{"tue", "thu"},
			start: "12:00",
			want:  "TUE/THU 12 PM",
		},
		{
			name:  "полночь",
			days:  []string{"fri"},
			start: "00:30",
			want:  "FRI 12 AM",
		},
		{
			name:  "ISO-метка времени",
			days:  []string{"wed"},
			start: "2025-09-01T17:30:00Z",
			want:  "WED 5 PM",
		},
		{
			name:  "нечитаемое время подставляется как есть",
			days:  []string{"sat"},
			start: "после обеда",
			want:  "SAT после обеда",
		},
		{
			name:  "длинное название дня усекается до трёх букв",
			days:  []string{"saturday"},
			start: "16:00",
			want:  "SAT 4 PM",
		},
		{
			name:  "кириллическое название усекается по рунам",
			days:  []string{"суббота"},
			start: "16:00",
			want:  "СУБ 4 PM",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GenerateGroupName(tc.days, tc.start); got != tc.want {
				t.Fatalf("GenerateGroupName(%v, %q) = %q, want %q", tc.days, tc.start, got, tc.want)
			}
		})
	}
}
