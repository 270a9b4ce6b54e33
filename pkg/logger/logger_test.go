package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetFallsBackToDefault(t *testing.T) {
	assert.Same(t, defaultLogger, Get(context.Background()))
}

func TestWithFieldsAddsFieldsToEntries(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = WithFields(ctx, zap.String("book.id", "abc"))

	Info(ctx, "book added")
	Debug(ctx, "book loaded")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "book added", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["book.id"])
	assert.Equal(t, zap.DebugLevel, entries[1].Level)
}

func TestSetup(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	require.NoError(t, Setup(ProductionEnvironment))
	assert.False(t, Get(context.Background()).Core().Enabled(zap.DebugLevel))

	require.NoError(t, Setup(DevelopmentEnvironment))
	assert.True(t, Get(context.Background()).Core().Enabled(zap.DebugLevel))
}
