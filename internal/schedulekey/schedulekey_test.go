package schedulekey

import (
	"reflect"
	"testing"
)

func TestEncodeSortsSegments(t *testing.T) {
	entries := []Entry{
		{Day: "sat", Start: "16:00", End: "18:00"},
		{Day: "mon", Start: "16:00", End: "18:00"},
	}
	got := Encode(entries)
	want := "mon:16:00:18:00|sat:16:00:18:00"
	if got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeOrderIndependent(t *testing.T) {
	a := []Entry{
		{Day: "sat", Start: "16:00", End: "18:00"},
		{Day: "mon", Start: "16:00", End: "18:00"},
		{Day: "wed", Start: "10:30", End: "12:00"},
	}
	b := []Entry{a[2], a[0], a[1]}
	if Encode(a) != Encode(b) {
		t.Fatalf("перестановка слотов изменила ключ: %q != %q", Encode(a), Encode(b))
	}
}

func TestEncodeEmpty(t *testing.T) {
	if got := Encode(nil); got != "" {
		t.Fatalf("Encode(nil) = %q, want \"\"", got)
	}
	if got := Decode(""); len(got) != 0 {
		t.Fatalf("Decode(\"\") = %v, want пустой список", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	entries := []Entry{
		{Day: "mon", Start: "16:00", End: "18:00"},
		{Day: "sat", Start: "09:00", End: "11:30"},
		{Day: "wed", Start: "23:00", End: "01:00"},
	}
	got := Decode(Encode(entries))
	if len(got) != len(entries) {
		t.Fatalf("после round-trip осталось %d слотов из %d", len(got), len(entries))
	}
	want := map[Entry]bool{}
	for _, e := range entries {
		want[e] = true
	}
	for _, e := range got {
		if !want[e] {
			t.Errorf("после round-trip появился лишний слот %+v", e)
		}
	}
}

func TestDecodeSkipsMalformedSegments(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want []Entry
	}{
		{
			name: "сегмент без времени конца",
			key:  "sat:16:00",
			want: []Entry{},
		},
		{
			name: "битый сегмент рядом с нормальным",
			key:  "sat:16:00|mon:16:00:18:00",
			want: []Entry{{Day: "mon", Start: "16:00", End: "18:00"}},
		},
		{
			name: "пустые сегменты",
			key:  "||",
			want: []Entry{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(tc.key)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Decode(%q) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestContainsDay(t *testing.T) {
	key := "mon:16:00:18:00|sat:16:00:18:00"
	if !ContainsDay(key, "sat") {
		t.Error("ContainsDay не нашёл субботу")
	}
	if ContainsDay(key, "wed") {
		t.Error("ContainsDay нашёл несуществующую среду")
	}
	if ContainsDay("", "sat") {
		t.Error("ContainsDay по пустому ключу должен возвращать false")
	}
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"16:00", "18:00", 120},
		{"23:00", "01:00", 120}, // переход через полночь
		{"10:00", "10:00", 1440},
		{"09:15", "10:45", 90},
		{"мусор", "10:00", 0},
	}
	for _, tc := range cases {
		if got := DurationMinutes(tc.start, tc.end); got != tc.want {
			t.Errorf("DurationMinutes(%q, %q) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestClockFromMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{960, "16:00"},
		{1500, "01:00"}, // 23:00 + 120 минут с переносом через полночь
	}
	for _, tc := range cases {
		if got := ClockFromMinutes(tc.minutes); got != tc.want {
			t.Errorf("ClockFromMinutes(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestDayNameMapping(t *testing.T) {
	name, ok := FullDayName("wed")
	if !ok || name != "Wednesday" {
		t.Fatalf("FullDayName(wed) = %q, %v", name, ok)
	}
	code, ok := DayCode("Wednesday")
	if !ok || code != "wed" {
		t.Fatalf("DayCode(Wednesday) = %q, %v", code, ok)
	}
	if _, ok := FullDayName("xyz"); ok {
		t.Error("FullDayName принял неизвестный код")
	}
	// Словарь обязан быть симметричным.
	for c := range map[string]bool{"sat": true, "sun": true, "mon": true, "tue": true, "wed": true, "thu": true, "fri": true} {
		full, ok := FullDayName(c)
		if !ok {
			t.Errorf("нет полного названия для %q", c)
			continue
		}
		back, ok := DayCode(full)
		if !ok || back != c {
			t.Errorf("обратное преобразование %q -> %q -> %q", c, full, back)
		}
	}
}
