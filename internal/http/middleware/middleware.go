package middleware

import (
	"net/http"
	"time"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/http/handlers/response"

	"github.com/getsentry/sentry-go"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestID attaches the chi request ID to the context so that it shows up in logs.
func RequestID(next http.Handler) http.Handler {
	return chimiddleware.RequestID(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requestID := chimiddleware.GetReqID(r.Context())
		rw.Header().Set(chimiddleware.RequestIDHeader, requestID)
		next.ServeHTTP(rw, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	}))
}

// ErrorReporting gives every request its own Sentry hub, so events carry
// the request and its ID.
func ErrorReporting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		hub := sentry.GetHubFromContext(ctx)
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
			ctx = sentry.SetHubOnContext(ctx, hub)
		}
		hub.Scope().SetRequest(r)
		if requestID, ok := logging.RequestID(ctx); ok {
			hub.Scope().SetTag("requestID", requestID)
		}
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

func Logging(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info(
					r.Context(),
					"Request handled.",
					logging.Entry("method", r.Method),
					logging.Entry("path", r.URL.Path),
					logging.Entry("status", ww.Status()),
					logging.Entry("duration", time.Since(start).String()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func Recoverer(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error(r.Context(), "Panic while handling request.", logging.Entry("panic", rec))
				if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
					hub.RecoverWithContext(r.Context(), rec)
				}
				response.RenderInternalError(rw)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
