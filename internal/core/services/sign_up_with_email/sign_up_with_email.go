package signupwithemail

import (
	"context"
	"errors"
	"time"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	uow "verifyme/internal/core/domain/unit_of_work"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/core/services"
)

type Input struct {
	Email    c.Email
	Password user.RawPassword
}

type Result struct {
	User user.User
}

type service struct {
	log                     logging.Logger
	unitOfWork              uow.UnitOfWork
	passwordHasher          user.PasswordHasher
	activationCodeGenerator user.ActivationCodeGenerator
	activationCodeTTL       time.Duration
	now                     func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordHasher user.PasswordHasher,
	activationCodeGenerator user.ActivationCodeGenerator,
	activationCodeTTL time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if activationCodeGenerator == nil {
		panic(e.NewNilArgumentError("activationCodeGenerator"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		unitOfWork:              unitOfWork,
		passwordHasher:          passwordHasher,
		activationCodeGenerator: activationCodeGenerator,
		activationCodeTTL:       activationCodeTTL,
		log:                     log,
		now:                     now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	passwordHash, err := s.passwordHasher.HashPassword(input.Password)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, err
	}
	activationCode, err := s.activationCodeGenerator.GenerateActivationCode()
	if err != nil {
		s.log.Error(ctx, "Could not generate activation code.", logging.Entry("err", err))
		return result, err
	}

	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not begin unit of work.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("store", err)
	}
	defer uow.Rollback(ctx)

	_, err = uow.Users().GetByEmail(ctx, input.Email)
	if err == nil {
		s.log.Info(ctx, "User with the email already exists.", logging.Entry("email", input.Email))
		return result, user.ErrEmailAlreadyExists
	}
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if !errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Error(
			ctx,
			"Could not check whether the email is taken.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("store", err)
	}

	now := s.now()
	createdUser, err := uow.Users().Create(ctx, user.CreateUserInput{
		Email:               input.Email,
		PasswordHash:        passwordHash,
		ActivationCode:      activationCode,
		ActivationExpiresAt: now.Add(s.activationCodeTTL),
		CreatedAt:           now,
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrEmailAlreadyExists) {
		// Lost the race to a concurrent sign-up with the same email.
		s.log.Info(ctx, "User with the email already exists.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create new user.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("store", err)
	}

	err = uow.Commit(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, e.NewDependencyFailureError("store", err)
	}

	s.log.Info(ctx, "New user has been created.", logging.Entry("email", createdUser.Email))
	return Result{User: createdUser}, nil
}
