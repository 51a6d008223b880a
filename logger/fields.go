package logger

import (
	"go.uber.org/zap"
)

// Standard field names for structured logging.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldSource    = "source"

	// Operations
	FieldOperation = "operation"
	FieldPath      = "path"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount    = "count"
	FieldCapacity = "capacity"
	FieldDepth    = "depth"

	// Graph
	FieldMessageID = "message_id"
	FieldContext   = "context"
	FieldSubject   = "subject"
	FieldPredicate = "predicate"
	FieldObject    = "object"
	FieldWeight    = "weight"
	FieldPolicy    = "policy"
	FieldSymbol    = "symbol"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	persister := persist.NewPersister(store, resolver, logger.ComponentLogger("persist"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	msgLogger := logger.ChildLogger(baseLogger, logger.FieldMessageID, msg.ID)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
