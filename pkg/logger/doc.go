// Package logger provides structured logging for the Bluesky scraper.
//
// It wraps zerolog behind the Logger interface so components can take a
// logger as a dependency and tests can substitute NewTestLogger or
// NewNopLogger. Console output uses colored levels; setting
// logging.format to "json" switches to plain JSON lines, and
// logging.file additionally appends JSON to a file.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("query", q).Info("Starting search")
package logger
