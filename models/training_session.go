// gymnast-crm/models/training_session.go
package models

import "gorm.io/gorm"

// TrainingSession — повторяющееся занятие в календаре тренера.
// В отличие от ключей расписания здесь день недели хранится полным
// английским названием ("Saturday".."Friday") — это историческое различие
// словарей, преобразование делает internal/schedulekey.
//
// Инвариант: на каждую комбинацию (coach_id, day_of_week, start_time,
// end_time) существует не больше одного занятия; создающий код сперва ищет
// точный кортеж и только при его отсутствии вставляет новое.
type TrainingSession struct {
	gorm.Model
	CoachID   uint   `json:"coachId" gorm:"index"`
	DayOfWeek string `json:"dayOfWeek"` // полное название: "Saturday".."Friday"
	StartTime string `json:"startTime"` // "HH:MM"
	EndTime   string `json:"endTime"`   // "HH:MM"
	Title     string `json:"title"`
	Capacity  int    `json:"capacity" gorm:"default:20"`

	Coach *Coach `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
}
