// gymnast-crm/models/payment.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment — денежная операция по ученику: оплата абонемента, возврат и т.п.
// Бухгалтерская корректность (сверки, возвраты, задолженности) живёт во
// внешней системе; здесь только учётные записи для экранов финансов.
type Payment struct {
	gorm.Model
	StudentID uint       `json:"studentId" gorm:"index"`
	Amount    float64    `json:"amount" gorm:"not null"`
	PaidAt    *time.Time `json:"paidAt"`
	Method    string     `json:"method"` // "cash", "card", "transfer"
	Kind      string     `json:"kind" gorm:"default:income"`
	Comment   string     `json:"comment"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// Tariff — тарифный план с формулой месячной стоимости.
// Формула вычисляется на лету при предпросмотре, параметры подставляются из
// тарифа и недельного расписания ученика.
type Tariff struct {
	gorm.Model
	Name       string  `json:"name" gorm:"not null"`
	BaseAmount float64 `json:"baseAmount"`
	// Например: "База + Тренировки * 1500"
	Formula string `json:"formula"`
}
