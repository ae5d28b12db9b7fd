// gymnast-crm/models/student.go

package models

import (
	"time"

	"gorm.io/gorm"

	"gymnast-crm/internal/schedulekey"
)

// Student represents the gymnast model in the database.
type Student struct {
	gorm.Model
	IsActive  *bool      `json:"isActive" gorm:"default:true"`
	LastName  string     `json:"lastName" gorm:"not null"`
	FirstName string     `json:"firstName" gorm:"not null"`
	Gender    string     `json:"gender"`
	BirthDate *time.Time `json:"birthDate"`

	ParentName  string `json:"parentName"`
	ParentPhone string `json:"parentPhone"`
	Comments    string `json:"comments"`

	// Назначенный тренер; nil — ученик пока без тренера.
	CoachID *uint `json:"coachId"`

	// TrainingDays — избыточное поле с кодами дней ("sat", "mon", ...),
	// выводится из TrainingSchedule и нужно спискам/фильтрам.
	TrainingDays []string `json:"trainingDays" gorm:"serializer:json"`

	// TrainingSchedule — источник истины по недельному расписанию ученика.
	// Производные записи (строки расписания, группа, занятия тренера)
	// синхронизируются с ним кодом приложения.
	TrainingSchedule []schedulekey.Entry `json:"trainingSchedule" gorm:"serializer:json"`

	// Группа, к которой ученик сейчас привязан; nil — без группы.
	// Инвариант: при непустом расписании и назначенном тренере ключ группы
	// должен совпадать с закодированным расписанием ученика. Временный
	// рассинхрон допустим и чинится массовой сверкой.
	TrainingGroupID *uint `json:"trainingGroupId"`

	Coach         *Coach         `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
	TrainingGroup *TrainingGroup `gorm:"foreignKey:TrainingGroupID" json:"trainingGroup,omitempty"`
}
