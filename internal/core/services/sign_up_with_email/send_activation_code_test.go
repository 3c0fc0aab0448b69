package signupwithemail

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/core/domain/user"

	"github.com/stretchr/testify/suite"
)

var errTest = fmt.Errorf("test error")

type stubSignUpService struct {
	result Result
	err    error
}

func newStubSignUpService(err error) *stubSignUpService {
	return &stubSignUpService{
		result: Result{
			User: user.User{
				Email:          EMAIL,
				Status:         user.StatusPending,
				ActivationCode: c.NewOptional(user.ActivationCode(ACTIVATION_CODE), true),
			},
		},
		err: err,
	}
}

func (s *stubSignUpService) Run(ctx context.Context, input Input) (result Result, err error) {
	if s.err != nil {
		return result, s.err
	}
	return s.result, nil
}

type blockingSender struct{}

func (s blockingSender) SendActivationCode(ctx context.Context, email c.Email, code user.ActivationCode) error {
	<-ctx.Done()
	return ctx.Err()
}

type testActivationSuite struct {
	suite.Suite
	Logger  *logging.FakeLogger
	Sender  *user.FakeActivationCodeSender
	Inner   *stubSignUpService
	Service *serviceWithActivationCodeSending
}

func (suite *testActivationSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.Sender = user.NewFakeActivationCodeSender()
	suite.Inner = newStubSignUpService(nil)
	suite.Service = NewWithActivationCodeSending(
		suite.Logger,
		suite.Sender,
		time.Second,
		suite.Inner,
	).(*serviceWithActivationCodeSending)
}

func TestSendActivationCodeService(t *testing.T) {
	suite.Run(t, new(testActivationSuite))
}

func (suite *testActivationSuite) TestActivationCodeSent() {
	result, err := suite.Service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(c.Email(EMAIL), result.User.Email)
	assert.Equal(1, suite.Sender.SentCount())
	assert.Equal(c.Email(EMAIL), suite.Sender.LastSent().Email)
	assert.Equal(user.ActivationCode(ACTIVATION_CODE), suite.Sender.LastSent().Code)
}

func (suite *testActivationSuite) TestSignUpServiceError() {
	service := NewWithActivationCodeSending(
		suite.Logger,
		suite.Sender,
		time.Second,
		newStubSignUpService(errTest),
	)
	_, err := service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.True(errors.Is(err, errTest))
	assert.Equal(0, suite.Sender.SentCount())
}

func (suite *testActivationSuite) TestEmailAlreadyExistsSkipsSending() {
	service := NewWithActivationCodeSending(
		suite.Logger,
		suite.Sender,
		time.Second,
		newStubSignUpService(user.ErrEmailAlreadyExists),
	)
	_, err := service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.ErrorIs(err, user.ErrEmailAlreadyExists)
	assert.Equal(0, suite.Sender.SentCount())
}

func (suite *testActivationSuite) TestSenderErrorIsDependencyFailure() {
	suite.Sender.ReturnError = true

	result, err := suite.Service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.ErrorIs(err, e.ErrDependencyFailure)
	assert.Equal(c.Email(EMAIL), result.User.Email)
	assert.Equal(1, suite.Logger.CountByLevel(logging.ERROR))
}

func (suite *testActivationSuite) TestSenderTimeout() {
	service := NewWithActivationCodeSending(
		suite.Logger,
		blockingSender{},
		10*time.Millisecond,
		suite.Inner,
	)

	_, err := service.Run(context.Background(), Input{Email: EMAIL, Password: RAW_PASSWORD})

	assert := suite.Require()
	assert.ErrorIs(err, e.ErrDependencyFailure)
	assert.ErrorIs(err, context.DeadlineExceeded)
}
