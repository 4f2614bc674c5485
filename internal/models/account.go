package models

import (
	"strings"
	"time"
)

// Статусы аккаунта на прогреве. Свободные строки также допустимы
// при ручной смене статуса админом.
const (
	AccountStatusPending   = "pending"
	AccountStatusWarming   = "warming"
	AccountStatusCompleted = "completed"
)

// Account представляет прогреваемый Instagram-аккаунт пользователя.
// Счётчики активности заполняет внешний воркер прогрева, здесь они
// только хранятся и отдаются.
type Account struct {
	ID                 int        `json:"id"`
	UserID             int        `json:"-"`
	OrderID            *int       `json:"-"`
	Username           string     `json:"username"`
	EncryptedPassword  *string    `json:"-"`
	Niche              string     `json:"niche"`
	Status             string     `json:"status"`
	CurrentDay         int        `json:"current_day"`
	ProgressPercentage int        `json:"progress_percentage"`
	ReelsViewed        int        `json:"reels_viewed"`
	AccountsFollowed   int        `json:"accounts_followed"`
	CommentsLeft       int        `json:"comments_left"`
	ProxyID            *string    `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
}

// AccountWithEmail аккаунт вместе с почтой владельца, для админских списков.
type AccountWithEmail struct {
	Account
	UserEmail string `json:"user_email"`
}

// NormalizeUsername приводит хэндл к каноничному виду: срезает пробелы
// и ведущий @. Регистр сознательно не трогаем.
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}

// AccountUpdate частичное обновление аккаунта админом. Nil-поля не трогаются.
// Значения не валидируются по диапазонам, это тоже осознанный люк.
type AccountUpdate struct {
	Status             *string `json:"status"`
	CurrentDay         *int    `json:"current_day"`
	ProgressPercentage *int    `json:"progress_percentage"`
	ProxyID            *string `json:"proxy_id"`
}
