// Package logging provides structured logging configuration for the LMS client.
//
// This package wraps log/slog so the API client, session provider and
// resource stores share one logger. Secrets (access tokens, passwords,
// Authorization headers) are masked before any handler sees them.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Debug("request", "method", "GET", "path", "/module/ilist")
//
// # Log File
//
// When Config.File is set, records are also written to it as JSON through a
// MultiHandler, independent of the console format.
//
// # Integration
//
// Components accept a *slog.Logger through an option.
// If no logger is provided, they use logging.Nop().
package logging
