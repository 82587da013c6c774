// Package logger provides structured logging for appkit using zerolog.
//
// It supports JSON and console output, level configuration read from an
// environment snapshot, and component-scoped loggers carrying structured
// fields.
//
// # Usage
//
//	log := logger.Get("di")
//	log.Info("lazy singleton constructed", logger.Fields("type", "*sql.DB"))
package logger
