package signupwithemail

import (
	"context"
	"errors"
	"time"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/core/services"
)

// serviceWithActivationCodeSending makes exactly one delivery attempt after the user
// has been committed. A failed attempt is reported to the caller, the user stays pending.
type serviceWithActivationCodeSending struct {
	log     logging.Logger
	sender  user.ActivationCodeSender
	timeout time.Duration
	inner   services.Service[Input, Result]
}

func NewWithActivationCodeSending(
	log logging.Logger,
	sender user.ActivationCodeSender,
	timeout time.Duration,
	inner services.Service[Input, Result],
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithActivationCodeSending{
		log:     log,
		sender:  sender,
		timeout: timeout,
		inner:   inner,
	}
}

func (s *serviceWithActivationCodeSending) Run(ctx context.Context, input Input) (result Result, err error) {
	result, err = s.inner.Run(ctx, input)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Info(ctx, "Skip sending activation code.", logging.Entry("err", err))
		return result, err
	}
	if !result.User.ActivationCode.IsPresent {
		err = e.NewInvalidStateError("created user has no activation code")
		s.log.Error(ctx, "Could not send activation code.", logging.Entry("email", result.User.Email), logging.Entry("err", err))
		return result, err
	}

	sendCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err = s.sender.SendActivationCode(sendCtx, result.User.Email, result.User.ActivationCode.Value)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not send activation code.",
			logging.Entry("email", result.User.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("notification", err)
	}

	s.log.Info(ctx, "Activation code has been sent to the user.", logging.Entry("email", result.User.Email))
	return result, nil
}
