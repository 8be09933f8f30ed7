package token

import (
	"errors"
	"fmt"
	"run_the_numbers/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "run-the-numbers"

var ErrInvalidToken = errors.New("invalid token")

func GenerateAccessToken(user *model.User, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := model.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Admin: user.IsAdmin,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// VerifyToken проверяет подпись и срок; Subject содержит id пользователя
func VerifyToken(tokenStr string, secretKey []byte) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}

	return claims, nil
}
