// gymnast-crm/internal/schedulekey/groupname.go

package schedulekey

import (
	"fmt"
	"strings"
	"time"
)

// GenerateGroupName строит человекочитаемый ярлык группы вида "SAT/MON 4 PM"
// из списка кодов дней и стартового времени. Имя подставляется только при
// автосоздании группы и дальше живёт своей жизнью: при изменении состава или
// расписания оно автоматически не пересчитывается.
func GenerateGroupName(days []string, start string) string {
	upper := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		// Обрезаем по рунам: ярлык может прийти и не латиницей.
		if r := []rune(d); len(r) > 3 {
			d = string(r[:3])
		}
		upper = append(upper, strings.ToUpper(d))
	}

	label := formatStartTime(start)
	if len(upper) == 0 {
		return label
	}
	return strings.Join(upper, "/") + " " + label
}

// formatStartTime принимает либо голое "HH:MM", либо ISO-метку времени,
// внутри которой есть время суток, и отдаёт 12-часовой формат без ведущего
// нуля ("4 PM"). Если распарсить не удалось, возвращаем исходную строку как
// есть — пусть лучше в имени группы будет сырое значение, чем пустота.
func formatStartTime(raw string) string {
	clock := raw
	if i := strings.IndexByte(raw, 'T'); i != -1 && len(raw) >= i+6 {
		clock = raw[i+1 : i+6]
	}

	t, err := time.Parse("15:04", clock)
	if err != nil {
		return raw
	}

	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	suffix := "AM"
	if t.Hour() >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d %s", hour, suffix)
}
