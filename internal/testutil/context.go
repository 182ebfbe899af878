package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/vk/riglab/internal/ctxlog"
)

// Context returns a test context carrying a logger. Records are dropped
// unless RIGLAB_TEST_LOGS is "true", in which case they go to the test log.
func Context(t *testing.T) context.Context {
	t.Helper()
	handler := slog.DiscardHandler
	if os.Getenv("RIGLAB_TEST_LOGS") == "true" {
		handler = slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return ctxlog.WithLogger(context.Background(), slog.New(handler))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
