package activateuser

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/core/services"
	ratelimiting "verifyme/internal/core/services/rate_limiting"
)

type Input struct {
	Email          c.Email
	Password       user.RawPassword
	ActivationCode user.ActivationCode
}

func (i Input) GetRateLimitKey() string {
	return "activate-user::" + string(i.Email)
}

type Result struct {
	User user.User
}

type service struct {
	log            logging.Logger
	userRepository user.UserRepository
	passwordHasher user.PasswordHasher
	rateLimiting   *ratelimiting.Guard
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	passwordHasher user.PasswordHasher,
	rateLimiting *ratelimiting.Guard,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if rateLimiting == nil {
		panic(e.NewNilArgumentError("rateLimiting"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		userRepository: userRepository,
		passwordHasher: passwordHasher,
		rateLimiting:   rateLimiting,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, err := s.userRepository.GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		// Minimize risk for timing attacks
		s.passwordHasher.HashPassword(input.Password)
		return result, user.ErrInvalidCredentials
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user by email.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("store", err)
	}
	if !s.passwordHasher.ValidatePassword(input.Password, u.PasswordHash) {
		return result, user.ErrInvalidCredentials
	}
	if u.IsActive() {
		s.log.Info(ctx, "User is already active.", logging.Entry("email", u.Email))
		return result, user.ErrUserAlreadyActive
	}
	// Only callers holding the password spend the budget for code guesses.
	if err := s.rateLimiting.Check(ctx, input.GetRateLimitKey()); err != nil {
		return result, err
	}

	now := s.now()
	if u.IsActivationCodeExpired(now) {
		s.log.Info(
			ctx,
			"Activation code has expired.",
			logging.Entry("email", u.Email),
			logging.Entry("expiredAt", u.ActivationExpiresAt.Value),
		)
		return result, user.ErrActivationCodeExpired
	}
	if !u.ActivationCode.IsPresent || !codesEqual(u.ActivationCode.Value, input.ActivationCode) {
		s.log.Info(ctx, "Invalid activation code.", logging.Entry("email", u.Email))
		return result, user.ErrInvalidActivationCode
	}

	activatedUser, err := s.userRepository.Activate(ctx, user.ActivateUserInput{
		Email:          u.Email,
		ActivationCode: input.ActivationCode,
		At:             now,
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserAlreadyActive) || errors.Is(err, user.ErrInvalidActivationCode) {
		// A concurrent request consumed the code first.
		s.log.Info(ctx, "User has been activated concurrently.", logging.Entry("email", u.Email))
		return result, user.ErrUserAlreadyActive
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return result, user.ErrInvalidCredentials
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not activate user.",
			logging.Entry("email", u.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("store", err)
	}

	s.log.Info(ctx, "User successfully activated.", logging.Entry("email", activatedUser.Email))
	return Result{User: activatedUser}, nil
}

func codesEqual(expected user.ActivationCode, actual user.ActivationCode) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
