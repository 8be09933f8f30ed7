package pass

import "golang.org/x/crypto/bcrypt"

const minPasswordLen = 8

// Valid минимальные требования к паролю
func Valid(password string) bool {
	return len(password) >= minPasswordLen && len(password) <= 72
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
