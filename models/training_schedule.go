// gymnast-crm/models/training_schedule.go
package models

import "time"

// StudentTrainingSchedule — одна строка "ученик тренируется в такой-то день
// с такого-то по такое-то время". Полный набор строк ученика выводится из
// его поля TrainingSchedule и переписывается целиком при каждом изменении.
// Таблица нужна, чтобы посещаемость и отчёты могли фильтровать по дню без
// разбора закодированного ключа группы.
type StudentTrainingSchedule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"index" json:"studentId"`
	DayOfWeek string    `gorm:"size:3" json:"dayOfWeek"` // трёхбуквенный код: "sat".."fri"
	StartTime string    `json:"startTime"`               // "HH:MM"
	EndTime   string    `json:"endTime"`                 // "HH:MM"
	CreatedAt time.Time `json:"createdAt"`
}
