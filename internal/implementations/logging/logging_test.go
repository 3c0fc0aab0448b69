package logging

import (
	"context"
	"testing"
	"verifyme/internal/core/domain/logging"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEntriesAreLoggedAsFields(t *testing.T) {
	assert := require.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLoggerFrom(zap.New(core))

	log.Info(context.Background(), "User created.", logging.Entry("email", "a@x.com"))

	assert.Equal(1, logs.Len())
	entry := logs.All()[0]
	assert.Equal("User created.", entry.Message)
	assert.Equal(zapcore.InfoLevel, entry.Level)
	assert.Equal("a@x.com", entry.ContextMap()["email"])
}

func TestRequestIDIsAttached(t *testing.T) {
	assert := require.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLoggerFrom(zap.New(core))
	ctx := logging.WithRequestID(context.Background(), "req-1")

	log.Warning(ctx, "Slow request.")
	log.Error(context.Background(), "Failure.")

	assert.Equal(2, logs.Len())
	assert.Equal("req-1", logs.All()[0].ContextMap()["requestID"])
	assert.Equal(zapcore.WarnLevel, logs.All()[0].Level)
	_, ok := logs.All()[1].ContextMap()["requestID"]
	assert.False(ok)
}

func TestLevelFiltering(t *testing.T) {
	assert := require.New(t)
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLoggerFrom(zap.New(core))

	log.Debug(context.Background(), "Hidden.")
	log.Info(context.Background(), "Shown.")

	assert.Equal(1, logs.Len())
	assert.Equal("Shown.", logs.All()[0].Message)
}
