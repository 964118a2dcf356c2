package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	l := NewNop()
	ctx := WithContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}

func TestFromContext_FallsBack(t *testing.T) {
	got := FromContext(context.Background())
	assert.NotNil(t, got)
	assert.Same(t, got, FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
