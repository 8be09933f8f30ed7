package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

const refreshTokenBytes = 32

// NewRefreshToken возвращает токен для клиента и его хэш для хранения
func NewRefreshToken() (plain string, hash string, err error) {
	b := make([]byte, refreshTokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, HashRefreshToken(plain), nil
}

func HashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func VerifyRefreshToken(token string, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(token)), []byte(hash)) == 1
}
