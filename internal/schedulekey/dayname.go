// gymnast-crm/internal/schedulekey/dayname.go

package schedulekey

// В хранимых данных живут два словаря дней недели: ключи расписаний и строки
// расписаний учеников используют трёхбуквенные коды в нижнем регистре, а
// занятия тренера — полные английские названия с заглавной буквы.
// Это единственное место, где два словаря сводятся друг с другом.
var fullDayNames = map[string]string{
	"sat": "Saturday",
	"sun": "Sunday",
	"mon": "Monday",
	"tue": "Tuesday",
	"wed": "Wednesday",
	"thu": "Thursday",
	"fri": "Friday",
}

var dayCodes = func() map[string]string {
	m := make(map[string]string, len(fullDayNames))
	for code, name := range fullDayNames {
		m[name] = code
	}
	return m
}()

// FullDayName переводит код "wed" в полное название "Wednesday".
func FullDayName(code string) (string, bool) {
	name, ok := fullDayNames[code]
	return name, ok
}

// DayCode переводит полное название "Wednesday" обратно в код "wed".
func DayCode(fullName string) (string, bool) {
	code, ok := dayCodes[fullName]
	return code, ok
}

// KnownDayCode сообщает, является ли строка допустимым кодом дня недели.
func KnownDayCode(code string) bool {
	_, ok := fullDayNames[code]
	return ok
}
