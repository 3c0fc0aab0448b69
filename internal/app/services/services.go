package services

import (
	"verifyme/internal/app/deps"
	drl "verifyme/internal/core/domain/rate_limiter"
	"verifyme/internal/core/services"
	activateuser "verifyme/internal/core/services/activate_user"
	ratelimiting "verifyme/internal/core/services/rate_limiting"
	signupwithemail "verifyme/internal/core/services/sign_up_with_email"
	"verifyme/internal/core/services/timeout"
)

var ActivationRateLimit = drl.Limit{Interval: drl.Minute, Value: 5}

type Services struct {
	SignUpWithEmail services.Service[signupwithemail.Input, signupwithemail.Result]
	ActivateUser    services.Service[activateuser.Input, activateuser.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SignUpWithEmail = timeout.WithTimeout(
		deps.Logger,
		deps.Config.RequestTimeout,
		signupwithemail.NewWithActivationCodeSending(
			deps.Logger,
			deps.ActivationCodeSender,
			deps.Config.NotificationTimeout,
			signupwithemail.New(
				deps.Logger,
				deps.UnitOfWork,
				deps.PasswordHasher,
				deps.ActivationCodeGenerator,
				deps.Config.ActivationCodeTTL,
				deps.Now,
			),
		),
	)
	s.ActivateUser = timeout.WithTimeout(
		deps.Logger,
		deps.Config.RequestTimeout,
		activateuser.New(
			deps.Logger,
			deps.UserRepository,
			deps.PasswordHasher,
			ratelimiting.NewGuard(deps.Logger, deps.RateLimiter, ActivationRateLimit),
			deps.Now,
		),
	)

	return s
}
