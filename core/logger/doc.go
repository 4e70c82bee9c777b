// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance supporting console output for
// interactive use and JSON output for services, with an optional rotating
// file sink for long-running monitor sessions.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console (colored, development) or json (production)
//   - File: optional rotating JSON log file (size-based rotation)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Monitor started", zap.String("marker", path))
package logger
