package model

import "time"

// Session сессия авторизации (refresh токен хранится хэшем)
type Session struct {
	ID           string
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
}
