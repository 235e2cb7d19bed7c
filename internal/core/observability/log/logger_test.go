package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestLoggerWritesTypedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core)).With(String("component", "test"))

	l.Debug("propagated",
		Uint32("entity", 7),
		Strings("properties", []string{"color"}),
		Error(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "propagated", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "test", ctx["component"])
	assert.EqualValues(t, 7, ctx["entity"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	assert.Equal(t, LevelSilent, l.GetLevel())
}

func TestSetLevel(t *testing.T) {
	l := NewFromZap(zap.NewNop())
	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())
}
