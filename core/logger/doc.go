// Package logger provides a structured logging facility based on Zap.
//
// The debug level selects zap's development configuration; every other level uses the
// production one. Format chooses json or console encoding.
//
// WithRayID attaches the request's RayID from a Fiber context so that all logs of one
// HTTP request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log.Info("Round completed", zap.Int("round", 3))
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
