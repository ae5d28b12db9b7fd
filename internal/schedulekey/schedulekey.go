// gymnast-crm/internal/schedulekey/schedulekey.go

// Пакет schedulekey отвечает за канонический строковый ключ недельного
// расписания тренировок. Две группы тренируются по одному расписанию тогда и
// только тогда, когда их ключи совпадают, поэтому все компоненты, которые
// сравнивают расписания, обязаны ходить через Encode/Decode отсюда.
package schedulekey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Entry — один тренировочный слот недельного расписания.
// Day — трёхбуквенный код дня в нижнем регистре ("sat".."fri"),
// Start и End — время в формате "HH:MM".
type Entry struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Encode превращает набор слотов в канонический ключ вида
// "mon:16:00:18:00|sat:16:00:18:00". Сегменты сортируются лексикографически,
// поэтому порядок входных слотов на результат не влияет.
// Пустой вход кодируется в пустую строку.
func Encode(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	segments := make([]string, 0, len(entries))
	for _, e := range entries {
		segments = append(segments, e.Day+":"+e.Start+":"+e.End)
	}
	sort.Strings(segments)
	return strings.Join(segments, "|")
}

// Decode разбирает ключ обратно в слоты. Сегмент обязан распадаться ровно на
// 5 частей по двоеточию (день, часы и минуты начала, часы и минуты конца) —
// всё остальное считается повреждёнными историческими данными и молча
// пропускается: падать из-за битого ключа вызывающему коду нельзя.
func Decode(key string) []Entry {
	entries := []Entry{}
	if key == "" {
		return entries
	}
	for _, segment := range strings.Split(key, "|") {
		fields := strings.Split(segment, ":")
		if len(fields) != 5 {
			continue
		}
		entries = append(entries, Entry{
			Day:   fields[0],
			Start: fields[1] + ":" + fields[2],
			End:   fields[3] + ":" + fields[4],
		})
	}
	return entries
}

// ContainsDay проверяет, есть ли в ключе слот на указанный день (трёхбуквенный
// код), не разбирая ключ целиком. Используется календарными представлениями.
func ContainsDay(key, day string) bool {
	if key == "" || day == "" {
		return false
	}
	prefix := day + ":"
	for _, segment := range strings.Split(key, "|") {
		if strings.HasPrefix(segment, prefix) {
			return true
		}
	}
	return false
}

// DurationMinutes возвращает длительность слота в минутах. Если конец не
// позже начала, слот считается переходящим через полночь и к разнице
// добавляются сутки. Значение нужно только формам редактирования
// (выпадающий список длительности) и нигде не сохраняется.
func DurationMinutes(start, end string) int {
	s, ok := MinuteOfDay(start)
	if !ok {
		return 0
	}
	e, ok := MinuteOfDay(end)
	if !ok {
		return 0
	}
	d := e - s
	if d <= 0 {
		d += 24 * 60
	}
	return d
}

// MinuteOfDay переводит "HH:MM" в минуту суток (0..1439).
func MinuteOfDay(clock string) (int, bool) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ClockFromMinutes — обратная операция: минута суток в строку "HH:MM".
func ClockFromMinutes(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
