package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDependencyFailureError(t *testing.T) {
	assert := require.New(t)

	err := NewDependencyFailureError("store", context.DeadlineExceeded)

	assert.True(errors.Is(err, ErrDependencyFailure))
	assert.True(errors.Is(err, context.DeadlineExceeded))
	assert.False(errors.Is(err, context.Canceled))
	assert.Equal("store failure: context deadline exceeded", err.Error())

	var target *DependencyFailureError
	assert.True(errors.As(err, &target))
	assert.Equal("store", target.Dependency)
}

func TestNilArgumentError(t *testing.T) {
	require.Equal(t, "argument 'log' must not be nil", NewNilArgumentError("log").Error())
}
