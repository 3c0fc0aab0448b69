package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	e "verifyme/internal/core/domain/errors"
	ratelimiter "verifyme/internal/core/domain/rate_limiter"

	"github.com/getsentry/sentry-go"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
)

type body struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) body {
	var b body
	if err := json.NewDecoder(rr.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	return b
}

type fakeSentryTransport struct {
	events []*sentry.Event
}

func (t *fakeSentryTransport) Flush(timeout time.Duration) bool { return true }
func (t *fakeSentryTransport) Configure(options sentry.ClientOptions) {}
func (t *fakeSentryTransport) SendEvent(event *sentry.Event) {
	t.events = append(t.events, event)
}

func newRequestWithHub(t *testing.T, transport sentry.Transport) *http.Request {
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: transport})
	if err != nil {
		t.Fatal(err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	return req.WithContext(sentry.SetHubOnContext(req.Context(), hub))
}

func TestRenderServiceError(t *testing.T) {
	cases := []struct {
		err              error
		expectedStatus   int
		expectedCode     ErrorCode
		expectedReported int
	}{
		{
			err:              ratelimiter.ErrRateLimitExceeded,
			expectedStatus:   http.StatusTooManyRequests,
			expectedCode:     CodeRateLimitExceeded,
			expectedReported: 0,
		},
		{
			err:              e.NewDependencyFailureError("store", errors.New("connection refused")),
			expectedStatus:   http.StatusServiceUnavailable,
			expectedCode:     CodeServiceUnavailable,
			expectedReported: 1,
		},
		{
			err:              errors.New("unexpected"),
			expectedStatus:   http.StatusInternalServerError,
			expectedCode:     CodeInternalServerError,
			expectedReported: 1,
		},
	}
	for _, testcase := range cases {
		t.Run(string(testcase.expectedCode), func(t *testing.T) {
			transport := &fakeSentryTransport{}
			rr := httptest.NewRecorder()
			RenderServiceError(rr, newRequestWithHub(t, transport), testcase.err)

			assert.Len(t, transport.events, testcase.expectedReported)
			assert.Equal(t, testcase.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			b := decode(t, rr)
			assert.Equal(t, string(testcase.expectedCode), b.Error.Code)
			assert.NotContains(t, b.Error.Message, "connection refused")
		})
	}
}

func TestRenderUnauthorizedSetsChallenge(t *testing.T) {
	rr := httptest.NewRecorder()
	RenderUnauthorized(rr)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
	assert.Equal(t, string(CodeInvalidCredentials), decode(t, rr).Error.Code)
}

func TestRenderValidationErrorDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	RenderValidationError(rr, validation.Errors{"email": errors.New("must be a valid email address")})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	b := decode(t, rr)
	assert.Equal(t, string(CodeValidationError), b.Error.Code)
	assert.Equal(t, "must be a valid email address", b.Error.Details["email"])
}
