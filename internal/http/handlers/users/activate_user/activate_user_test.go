package activateuser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	e "verifyme/internal/core/domain/errors"
	ratelimiter "verifyme/internal/core/domain/rate_limiter"
	"verifyme/internal/core/domain/user"
	service "verifyme/internal/core/services/activate_user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	err   error
	input *service.Input
}

func (s *stubService) Run(ctx context.Context, input service.Input) (result service.Result, err error) {
	s.input = &input
	if s.err != nil {
		return result, s.err
	}
	result.User = user.User{Email: input.Email, Status: user.StatusActive}
	return result, nil
}

type credentials struct {
	email    string
	password string
}

func TestActivateUserHandler(t *testing.T) {
	validCredentials := &credentials{email: "a@x.com", password: "Secret123"}
	validInput := &service.Input{Email: "a@x.com", Password: "Secret123", ActivationCode: "0427"}

	cases := []struct {
		id             string
		credentials    *credentials
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
		expectedInput  *service.Input
	}{
		{
			id:             "success",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			expectedStatus: http.StatusOK,
			expectedInput:  validInput,
		},
		{
			id:             "email-normalized",
			credentials:    &credentials{email: "A@X.COM", password: "Secret123"},
			body:           `{"code": "0427"}`,
			expectedStatus: http.StatusOK,
			expectedInput:  validInput,
		},
		{
			id:             "no-credentials",
			body:           `{"code": "0427"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
		},
		{
			id:             "empty-email",
			credentials:    &credentials{email: "", password: "Secret123"},
			body:           `{"code": "0427"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
		},
		{
			id:             "code-too-short",
			credentials:    validCredentials,
			body:           `{"code": "427"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			id:             "code-not-digits",
			credentials:    validCredentials,
			body:           `{"code": "04a7"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			id:             "code-too-long",
			credentials:    validCredentials,
			body:           `{"code": "04270"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			id:             "code-non-ascii-digits",
			credentials:    validCredentials,
			body:           `{"code": "٠٤٢٧"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			id:             "code-missing",
			credentials:    validCredentials,
			body:           `{}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			id:             "code-is-number",
			credentials:    validCredentials,
			body:           `{"code": 427}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			id:             "invalid-credentials",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			serviceErr:     user.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
			expectedInput:  validInput,
		},
		{
			id:             "already-active",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			serviceErr:     user.ErrUserAlreadyActive,
			expectedStatus: http.StatusConflict,
			expectedCode:   "USER_ALREADY_ACTIVATED",
			expectedInput:  validInput,
		},
		{
			id:             "invalid-code",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			serviceErr:     user.ErrInvalidActivationCode,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_ACTIVATION_CODE",
			expectedInput:  validInput,
		},
		{
			id:             "expired-code",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			serviceErr:     user.ErrActivationCodeExpired,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "EXPIRED_ACTIVATION_CODE",
			expectedInput:  validInput,
		},
		{
			id:             "rate-limited",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			serviceErr:     ratelimiter.ErrRateLimitExceeded,
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   "RATE_LIMIT_EXCEEDED",
			expectedInput:  validInput,
		},
		{
			id:             "dependency-failure",
			credentials:    validCredentials,
			body:           `{"code": "0427"}`,
			serviceErr:     e.NewDependencyFailureError("store", errors.New("timeout")),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "SERVICE_UNAVAILABLE",
			expectedInput:  validInput,
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			s := &stubService{err: testcase.serviceErr}
			handler := New(s)
			req := httptest.NewRequest(http.MethodPost, "/users/activate", strings.NewReader(testcase.body))
			if testcase.credentials != nil {
				req.SetBasicAuth(testcase.credentials.email, testcase.credentials.password)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, testcase.expectedStatus, rr.Code)
			assert.Equal(t, testcase.expectedInput, s.input)

			var body map[string]interface{}
			assert.Nil(t, json.NewDecoder(rr.Body).Decode(&body))
			if testcase.expectedCode != "" {
				errBody := body["error"].(map[string]interface{})
				assert.Equal(t, testcase.expectedCode, errBody["code"])
				return
			}
			assert.Equal(t, map[string]interface{}{"email": "a@x.com", "status": "activated"}, body)
		})
	}
}

func TestUnauthorizedResponsesAreIndistinguishable(t *testing.T) {
	render := func(credentials *credentials, serviceErr error) *httptest.ResponseRecorder {
		handler := New(&stubService{err: serviceErr})
		req := httptest.NewRequest(http.MethodPost, "/users/activate", strings.NewReader(`{"code": "0427"}`))
		if credentials != nil {
			req.SetBasicAuth(credentials.email, credentials.password)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	unknownEmail := render(&credentials{email: "b@x.com", password: "Secret123"}, user.ErrInvalidCredentials)
	wrongPassword := render(&credentials{email: "a@x.com", password: "wrong"}, user.ErrInvalidCredentials)
	missingHeader := render(nil, nil)

	assert.Equal(t, unknownEmail.Code, wrongPassword.Code)
	assert.Equal(t, unknownEmail.Body.String(), wrongPassword.Body.String())
	assert.Equal(t, unknownEmail.Body.String(), missingHeader.Body.String())
	assert.Equal(t, unknownEmail.Header(), wrongPassword.Header())
	assert.Contains(t, unknownEmail.Header().Get("WWW-Authenticate"), "Basic")
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	s := &stubService{}
	handler := New(s)
	req := httptest.NewRequest(http.MethodPost, "/users/activate", strings.NewReader(`{"code": "0427"}`))
	req.Header.Set("Authorization", "Basic not-base64!")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, s.input)
}

func TestInputValidateUsesActivationCodeFormat(t *testing.T) {
	require.Nil(t, Input{Code: "0000"}.Validate())
	require.Nil(t, Input{Code: "9999"}.Validate())
	require.ErrorContains(t, Input{Code: "12 4"}.Validate(), "must be exactly 4 digits")
}
