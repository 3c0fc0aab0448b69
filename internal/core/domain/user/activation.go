package user

import (
	"context"
	c "verifyme/internal/core/domain/common"
)

type ActivationCodeGenerator interface {
	GenerateActivationCode() (ActivationCode, error)
}

// ActivationCodeSender delivers the code to the address through an external channel.
// A returned error means the delivery attempt failed.
type ActivationCodeSender interface {
	SendActivationCode(ctx context.Context, email c.Email, code ActivationCode) error
}
