package signupwithemail

import (
	"context"
	"errors"
	"testing"
	"time"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	uow "verifyme/internal/core/domain/unit_of_work"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/core/services"

	"github.com/stretchr/testify/suite"
)

const (
	ACTIVATION_CODE     = "0042"
	EMAIL               = "a@x.com"
	RAW_PASSWORD        = user.RawPassword("Secret123")
	ACTIVATION_CODE_TTL = time.Minute
)

var NOW time.Time = time.Now().UTC()

type testSuite struct {
	suite.Suite
	Logger                  *logging.FakeLogger
	UnitOfWork              *uow.FakeUnitOfWork
	PasswordHasher          *user.FakePasswordHasher
	ActivationCodeGenerator *user.FakeActivationCodeGenerator
	Service                 services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.UnitOfWork = uow.NewFakeUnitOfWork()
	suite.PasswordHasher = user.NewFakePasswordHasher()
	suite.ActivationCodeGenerator = user.NewFakeActivationCodeGenerator(ACTIVATION_CODE)
	suite.Service = New(
		suite.Logger,
		suite.UnitOfWork,
		suite.PasswordHasher,
		suite.ActivationCodeGenerator,
		ACTIVATION_CODE_TTL,
		func() time.Time { return NOW },
	)
}

func TestSignUpWithEmailService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestSuccess() {
	ctx := context.Background()
	result, err := suite.Service.Run(ctx, Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(NOW, result.User.CreatedAt)
	assert.Equal(EMAIL, string(result.User.Email))
	assert.Equal(user.StatusPending, result.User.Status)
	assert.NotEqual(string(RAW_PASSWORD), string(result.User.PasswordHash))
	assert.True(suite.PasswordHasher.ValidatePassword(RAW_PASSWORD, result.User.PasswordHash))
	assert.True(result.User.ActivationCode.IsPresent)
	assert.Equal(user.ActivationCode(ACTIVATION_CODE), result.User.ActivationCode.Value)
	assert.True(result.User.ActivationExpiresAt.IsPresent)
	assert.Equal(NOW.Add(ACTIVATION_CODE_TTL), result.User.ActivationExpiresAt.Value)
	assert.False(result.User.ActivatedAt.IsPresent)
	assert.True(suite.UnitOfWork.Context.WasCommitCalled)

	stored, err := suite.UnitOfWork.Context.UserRepository.GetByEmail(ctx, EMAIL)
	assert.Nil(err)
	assert.Equal(result.User, stored)
}

func (suite *testSuite) TestEmailAlreadyExistsError() {
	ctx := context.Background()
	_, err := suite.Service.Run(ctx, Input{Email: EMAIL, Password: RAW_PASSWORD})
	suite.Require().Nil(err)
	suite.UnitOfWork.Context.WasCommitCalled = false

	suite.ActivationCodeGenerator.Code = "9999"
	_, err = suite.Service.Run(ctx, Input{Email: EMAIL, Password: user.RawPassword("other-password")})

	assert := suite.Require()
	assert.ErrorIs(err, user.ErrEmailAlreadyExists)
	assert.False(suite.UnitOfWork.Context.WasCommitCalled)
	assert.True(suite.UnitOfWork.Context.WasRollbackCalled)
	assert.Len(suite.UnitOfWork.Context.UserRepository.Users, 1)

	stored, err := suite.UnitOfWork.Context.UserRepository.GetByEmail(ctx, EMAIL)
	assert.Nil(err)
	assert.Equal(user.ActivationCode(ACTIVATION_CODE), stored.ActivationCode.Value)
	assert.True(suite.PasswordHasher.ValidatePassword(RAW_PASSWORD, stored.PasswordHash))
}

func (suite *testSuite) TestStoreErrorIsDependencyFailure() {
	suite.UnitOfWork.Context.UserRepository.ReturnError = true

	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.ErrorIs(err, e.ErrDependencyFailure)
	assert.False(suite.UnitOfWork.Context.WasCommitCalled)
}

func (suite *testSuite) TestBeginErrorIsDependencyFailure() {
	suite.UnitOfWork.BeginReturnError = true

	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	suite.Require().ErrorIs(err, e.ErrDependencyFailure)
}

func (suite *testSuite) TestCommitErrorIsDependencyFailure() {
	suite.UnitOfWork.Context.CommitReturnError = true

	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.ErrorIs(err, e.ErrDependencyFailure)
	assert.True(suite.UnitOfWork.Context.WasRollbackCalled)
}

func (suite *testSuite) TestActivationCodeGeneratorError() {
	suite.ActivationCodeGenerator.ReturnError = true

	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.NotNil(err)
	assert.False(errors.Is(err, user.ErrEmailAlreadyExists))
	assert.Empty(suite.UnitOfWork.Context.UserRepository.Users)
}
