// gymnast-crm/models/coach.go
package models

import "gorm.io/gorm"

// Coach представляет тренера академии.
type Coach struct {
	gorm.Model
	LastName  string `json:"lastName" gorm:"not null"`
	FirstName string `json:"firstName" gorm:"not null"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	IsActive  *bool  `json:"isActive" gorm:"default:true"`
}
