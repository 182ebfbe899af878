package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		level, format string
		enabled       slog.Level
		disabled      slog.Level
		prefix        string
	}{
		{"debug", "text", slog.LevelDebug, slog.LevelDebug - 1, "time="},
		{"WARN", "json", slog.LevelWarn, slog.LevelInfo, "{"},
		{"bogus", "text", slog.LevelInfo, slog.LevelDebug, "time="},
	}

	for _, tc := range testCases {
		t.Run(tc.level+"/"+tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&Config{RigPath: "rigs/arm.hcl", LogLevel: tc.level, LogFormat: tc.format}, &buf)
			assert.True(t, logger.Handler().Enabled(context.Background(), tc.enabled))
			assert.False(t, logger.Handler().Enabled(context.Background(), tc.disabled))

			logger.Error("boom")
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(tc.prefix)), buf.String())
			assert.Contains(t, buf.String(), "rigs/arm.hcl")
		})
	}
}
