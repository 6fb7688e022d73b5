// Package logger provides a structured logging facility based on Zap.
//
// It builds the process logger from Config and integrates with the Fiber web
// framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID stored by the rayid middleware
// from a Fiber context and attaches it to the log entry, so all logs of one
// request can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console or json
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
