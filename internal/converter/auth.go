package converter

import (
	"run_the_numbers/internal/api/dto/auth"
	"run_the_numbers/internal/model"
	"strings"
)

func RegisterRequestToUserModel(req *auth.RegisterRequest) *model.User {
	return &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
}
