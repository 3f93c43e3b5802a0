package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs an XRPC request outcome at a level derived from its status
func LogRequest(l Logger, method, endpoint string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("XRPC request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("XRPC request client error", fields)
	default:
		l.DebugWithFields("XRPC request completed", fields)
	}
}

// LogPage logs one fetched page of search results
func LogPage(l Logger, query string, page, posts, total int, hasCursor bool) {
	l.InfoWithFields("Fetched search page", map[string]interface{}{
		"query":      query,
		"page":       page,
		"posts":      posts,
		"total":      total,
		"has_cursor": hasCursor,
	})
}

// LogSkippedPost logs a post dropped during extraction
func LogSkippedPost(l Logger, uri, missingKey string) {
	fields := map[string]interface{}{"missing_key": missingKey}
	if uri != "" {
		fields["uri"] = uri
	}
	l.WarnWithFields("Skipping post with missing field", fields)
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(string) {}
func (nopLogger) Fatal(string) {}
func (n nopLogger) WithField(string, interface{}) Logger { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger { return n }
func (n nopLogger) WithError(error) Logger { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
func (nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (nopLogger) InfoWithFields(string, map[string]interface{}) {}
func (nopLogger) WarnWithFields(string, map[string]interface{}) {}
func (nopLogger) ErrorWithFields(string, map[string]interface{}) {}
func (nopLogger) GetZerolog() *zerolog.Logger { z := zerolog.Nop(); return &z }
