package user

import (
	"errors"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUserDoesNotExist      = errors.New("user does not exist")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserAlreadyActive     = errors.New("user is already active")
	ErrInvalidActivationCode = errors.New("invalid activation code")
	ErrActivationCodeExpired = errors.New("activation code expired")
)
