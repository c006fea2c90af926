// Package logger provides structured logging for the tpi client using
// zerolog.
//
// Command output goes to stdout, so the logger writes to stderr by default
// and stays at warn level unless verbose output is requested.
//
// # Configuration
//
//	logging:
//	  level: "warn"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.WithComponent("auth")
//	log.Debug("token loaded from cache", logger.Fields("path", path))
package logger
