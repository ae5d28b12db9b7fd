// gymnast-crm/models/attendance.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Attendance — отметка посещаемости ученика за конкретную дату.
type Attendance struct {
	gorm.Model
	StudentID         uint      `json:"studentId" gorm:"index"`
	TrainingSessionID *uint     `json:"trainingSessionId"`
	Date              time.Time `json:"date" gorm:"index"`
	Attended          *bool     `json:"attended" gorm:"default:true"`
	Comment           string    `json:"comment"`

	Student         *Student         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	TrainingSession *TrainingSession `gorm:"foreignKey:TrainingSessionID" json:"trainingSession,omitempty"`
}
