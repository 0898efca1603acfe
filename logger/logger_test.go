package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		level      zapcore.Level
	}{
		{name: "JSON output mode", jsonOutput: true, level: zapcore.InfoLevel},
		{name: "Console output mode", jsonOutput: false, level: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			err := Initialize(tt.jsonOutput, tt.level)
			require.NoError(t, err)
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.True(t, Logger.Desugar().Core().Enabled(tt.level))
			assert.False(t, Logger.Desugar().Core().Enabled(tt.level-1))

			Cleanup()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestShouldLogTrace(t *testing.T) {
	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
	assert.Equal(t, "Trace (-vvv)", LevelName(7))
	assert.Equal(t, "User", LevelName(0))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestFieldsFromContext(t *testing.T) {
	assert.Empty(t, FieldsFromContext(context.Background()))

	ctx := WithComponent(WithTraceID(context.Background(), "abc"), "chase")
	assert.Equal(t, []interface{}{FieldTraceID, "abc", FieldComponent, "chase"}, FieldsFromContext(ctx))

	fresh := FieldsFromContext(WithNewTraceID(context.Background()))
	require.Len(t, fresh, 2)
	assert.Len(t, fresh[1], 36)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := ComponentLogger("test")
	assert.Same(t, l, OrNop(l))
}
