package user

import (
	"context"
	"time"
	c "verifyme/internal/core/domain/common"
)

type CreateUserInput struct {
	Email               c.Email
	PasswordHash        PasswordHash
	ActivationCode      ActivationCode
	ActivationExpiresAt time.Time
	CreatedAt           time.Time
}

type ActivateUserInput struct {
	Email          c.Email
	ActivationCode ActivationCode
	At             time.Time
}

type UserRepository interface {
	Create(ctx context.Context, input CreateUserInput) (User, error)
	GetByEmail(ctx context.Context, email c.Email) (User, error)
	// Activate moves a pending user with the given code to active and clears the code.
	// It fails with ErrUserAlreadyActive if the user has been activated already.
	Activate(ctx context.Context, input ActivateUserInput) (User, error)
}
