package tools

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmuk/filekeeper/pkg/session"
)

const toolsLogName = "tools"

type loggerKey struct{}

var discardLogger = slog.New(slog.DiscardHandler)

// withCallLogger attaches a logger for a single call of tool. It writes to
// the session's tools log when ctx carries a session.
func withCallLogger(ctx context.Context, tool string) context.Context {
	logger := discardLogger
	if s, ok := session.FromContext(ctx); ok {
		if l, err := s.GetLogger(toolsLogName); err == nil {
			logger = l
		}
	}
	logger = logger.With("tool", tool, "call_id", uuid.NewString())
	return context.WithValue(ctx, loggerKey{}, logger)
}

func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return discardLogger
}
