package model

import (
	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

type UserClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"adm,omitempty"`
}

type AuthData struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}

// Identity текущий пользователь запроса; гость не сохраняется во внешнем хранилище
type Identity struct {
	UserID string
	Guest  bool
	Admin  bool
}

// SessionKey ключ игровой сессии стола
func (i Identity) SessionKey() string {
	if i.Guest {
		return "guest:" + i.UserID
	}
	return i.UserID
}
