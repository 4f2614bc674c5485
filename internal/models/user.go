// Package models содержит доменные структуры пользователя, заказа и
// прогреваемого аккаунта, а также вспомогательные типы для приёма
// данных из JSON-запросов.
package models

import "time"

// Роли пользователей системы.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`      // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`          // Хэш пароля пользователя
	Role         string    `json:"role"`       // Роль пользователя, client или admin
	CreatedAt    time.Time `json:"created_at"` // Дата регистрации
}

// IsAdmin сообщает, имеет ли пользователь административную роль.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
