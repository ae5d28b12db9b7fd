// gymnast-crm/models/training_group.go
package models

import "gorm.io/gorm"

// TrainingGroup — именованная группа учеников с одним тренером и одним
// расписанием. Пара (coach_id, schedule_key) — её бизнес-ключ: двух групп
// одного тренера с одинаковым ключом быть не должно.
//
// Группа создаётся, когда такая пара впервые понадобилась (форме группы или
// массовой сверке), и никогда не удаляется автоматически при опустении —
// только явным действием пользователя.
type TrainingGroup struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null"`
	CoachID uint   `json:"coachId" gorm:"index"`

	// ScheduleKey — канонический ключ недельного расписания
	// (см. internal/schedulekey).
	ScheduleKey string `json:"scheduleKey" gorm:"index"`

	Coach *Coach `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
}
