package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"swipe-screening/internal/common/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNew_Formats(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(config.LoggingConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		Named("screening").
		WithFields(map[string]interface{}{"sessionId": "s-1"})

	log.WithError(errors.New("boom")).Warn("decision failed", map[string]interface{}{
		"candidateId": "c-1",
		"cause":       errors.New("timeout"),
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "decision failed", entry.Message)
	assert.Equal(t, "screening", entry.LoggerName)

	ctx := entry.ContextMap()
	assert.Equal(t, "s-1", ctx["sessionId"])
	assert.Equal(t, "c-1", ctx["candidateId"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "timeout", ctx["cause"])
}
