// gymnast-crm/models/user.go
package models

import "gorm.io/gorm"

// User — учётная запись сотрудника академии.
type User struct {
	gorm.Model
	Login        string `json:"login" gorm:"unique;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FullName     string `json:"fullName"`
	Role         string `json:"role" gorm:"default:manager"` // "admin" или "manager"
}
