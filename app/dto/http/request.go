package http

import (
	"errors"
	"net/mail"
	"strings"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *CreateUserRequest) Validate() error {
	username := strings.TrimSpace(r.Username)
	if len(username) < 3 || len(username) > 16 {
		return errors.New("username must be between 3 and 16 characters long")
	}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email must be a valid email address")
	}

	if len(r.Password) < 6 || len(r.Password) > 32 {
		return errors.New("password must be between 6 and 32 characters long")
	}

	return nil
}

type ActivateEmailRequest struct {
	Token  string `query:"token"`
	UserID string `query:"user_id"`
}

func (r *ActivateEmailRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" || strings.TrimSpace(r.UserID) == "" {
		return errors.New("token and user_id are required")
	}

	return nil
}
