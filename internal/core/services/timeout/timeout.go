package timeout

import (
	"context"
	"errors"
	"time"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/core/services"
)

type serviceWithTimeout[T any, S any] struct {
	log     logging.Logger
	timeout time.Duration
	inner   services.Service[T, S]
}

// WithTimeout bounds every run of inner. A run that outlives the timeout
// fails with a dependency failure.
func WithTimeout[T any, S any](
	log logging.Logger,
	timeout time.Duration,
	inner services.Service[T, S],
) services.Service[T, S] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	if timeout <= 0 {
		return inner
	}
	return &serviceWithTimeout[T, S]{log: log, timeout: timeout, inner: inner}
}

func (s *serviceWithTimeout[T, S]) Run(ctx context.Context, input T) (result S, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err = s.inner.Run(ctx, input)
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, e.ErrDependencyFailure) {
		s.log.Warning(ctx, "Service run timed out.", logging.Entry("timeout", s.timeout))
		return result, e.NewDependencyFailureError("timeout", err)
	}
	return result, err
}
