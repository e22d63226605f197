package auth

import (
	"net/http"

	"ReceiptTracker/pkg/response"
)

var (
	ErrEmailAlreadyExists     = response.NewError(http.StatusConflict, "email already exists")
	ErrInvalidEmailOrPassword = response.NewError(http.StatusUnauthorized, "email or password is wrong")
	ErrUserNotFound           = response.NewError(http.StatusNotFound, "user not found")
	ErrInvalidToken           = response.NewError(http.StatusUnauthorized, "invalid token")
)
