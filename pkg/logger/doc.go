// Package logger provides a structured logging interface for the exporter.
//
// It wraps the zerolog library to provide a clean API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output
// - Optional file output alongside the console
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "hubexport/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "export.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Export started")
//	logger.WithField("resource", "companies").Info("Phase complete")
//	logger.WithError(err).Error("Request failed")
//
// Advanced Usage:
//
//	log := logger.GetLogger().WithField("component", "exporter")
//
//	log.InfoWithFields("Page persisted", map[string]interface{}{
//	    "resource": "contacts",
//	    "records":  100,
//	    "cursor":   after,
//	})
//
// Tests can use NewTestLogger, which captures every message in memory
// instead of writing output.
package logger
