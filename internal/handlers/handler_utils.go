// gymnast-crm/internal/handlers/handler_utils.go
package handlers

import (
	"fmt"

	"gymnast-crm/internal/schedulekey"
)

// validateScheduleEntries проверяет расписание из формы до первой записи в
// базу: известные коды дней, читаемое время, конец не равен началу по формату.
// Пустое расписание допустимо — ученик может быть без тренировок.
func validateScheduleEntries(entries []schedulekey.Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !schedulekey.KnownDayCode(e.Day) {
			return fmt.Errorf("неизвестный код дня недели: %q", e.Day)
		}
		if _, ok := schedulekey.MinuteOfDay(e.Start); !ok {
			return fmt.Errorf("некорректное время начала %q для дня %q", e.Start, e.Day)
		}
		if _, ok := schedulekey.MinuteOfDay(e.End); !ok {
			return fmt.Errorf("некорректное время конца %q для дня %q", e.End, e.Day)
		}
		if seen[e.Day] {
			return fmt.Errorf("день %q указан в расписании дважды", e.Day)
		}
		seen[e.Day] = true
	}
	return nil
}
