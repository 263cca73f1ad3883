// Package logger provides structured logging for tabkit using zerolog.
//
// Loggers carry a service name and are scoped per component with
// WithComponent. Fields are passed as maps so call sites stay free of
// zerolog's builder API.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("ingest")
//	log.Info("dispatched", logger.Fields(logger.FieldIndex, 2))
package logger
