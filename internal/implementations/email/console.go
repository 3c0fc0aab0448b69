package email

import (
	"context"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/core/domain/user"
)

// ConsoleSender writes activation codes to the log instead of sending them.
// Intended for local development.
type ConsoleSender struct {
	log logging.Logger
}

func NewConsoleSender(log logging.Logger) *ConsoleSender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) SendActivationCode(ctx context.Context, email c.Email, code user.ActivationCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info(
		ctx,
		"Activation code sent.",
		logging.Entry("to", email),
		logging.Entry("code", string(code)),
	)
	return nil
}
