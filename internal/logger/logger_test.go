package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCommonFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), " groq ", "llama-3.3-70b-versatile").Info("report generated")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "groq", fields[FieldProvider])
	assert.Equal(t, "llama-3.3-70b-versatile", fields[FieldModel])
}

func TestCommonFieldsSkipsEmpty(t *testing.T) {
	assert.Empty(t, CommonFields("", "  "))
	assert.Len(t, CommonFields("local", ""), 1)
}

func TestWithFieldsNilLogger(t *testing.T) {
	l := WithFields(nil)
	require.NotNil(t, l)
	l.Info("does not panic")
}

func TestNew(t *testing.T) {
	l, err := New("production", false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("development", true, false)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
