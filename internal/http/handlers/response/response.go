package response

import (
	"encoding/json"
	"errors"
	"net/http"
	e "verifyme/internal/core/domain/errors"
	ratelimiter "verifyme/internal/core/domain/rate_limiter"

	"github.com/getsentry/sentry-go"
)

type ErrorCode string

const (
	CodeValidationError       ErrorCode = "VALIDATION_ERROR"
	CodeUserAlreadyExists     ErrorCode = "USER_ALREADY_EXISTS"
	CodeUserAlreadyActivated  ErrorCode = "USER_ALREADY_ACTIVATED"
	CodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidActivationCode ErrorCode = "INVALID_ACTIVATION_CODE"
	CodeExpiredActivationCode ErrorCode = "EXPIRED_ACTIVATION_CODE"
	CodeRateLimitExceeded     ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable    ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInternalServerError   ErrorCode = "INTERNAL_SERVER_ERROR"
)

type errorBody struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// RenderUnauthorized asks the client for Basic credentials.
func RenderUnauthorized(rw http.ResponseWriter) {
	rw.Header().Set("WWW-Authenticate", `Basic realm="verifyme", charset="UTF-8"`)
	RenderError(rw, CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized)
}

func RenderInternalError(rw http.ResponseWriter) {
	RenderError(rw, CodeInternalServerError, "internal error", http.StatusInternalServerError)
}

func RenderRateLimitExceeded(rw http.ResponseWriter) {
	RenderError(rw, CodeRateLimitExceeded, "rate limit exceeded", http.StatusTooManyRequests)
}

func RenderServiceUnavailable(rw http.ResponseWriter) {
	RenderError(rw, CodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable)
}

func RenderInvalidRequestData(rw http.ResponseWriter) {
	RenderError(rw, CodeValidationError, "invalid request data", http.StatusUnprocessableEntity)
}

// RenderValidationError renders per-field messages of ozzo-validation errors as details.
func RenderValidationError(rw http.ResponseWriter, err error) {
	Render(
		rw,
		errorResponse{Error: errorBody{Code: CodeValidationError, Message: "validation failed", Details: err}},
		http.StatusUnprocessableEntity,
	)
}

// RenderServiceError renders errors that are common for all services.
// Dependency failures and unexpected errors are reported to Sentry.
func RenderServiceError(rw http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		RenderRateLimitExceeded(rw)
	case errors.Is(err, e.ErrDependencyFailure):
		reportError(r, err)
		RenderServiceUnavailable(rw)
	default:
		reportError(r, err)
		RenderInternalError(rw)
	}
}

func reportError(r *http.Request, err error) {
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

func RenderError(rw http.ResponseWriter, code ErrorCode, msg string, status int) {
	Render(rw, errorResponse{Error: errorBody{Code: code, Message: msg}}, status)
}

func Render(rw http.ResponseWriter, res interface{}, status int) {
	rw.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
	rw.Write(content)
}
