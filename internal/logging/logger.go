// Package logging decouples the analytics code from the logging backend.
// Components receive a Logger through their constructors; the CLI wires a
// logrus-backed implementation and tests use MockLogger.
package logging

// Logger is the structured logger used across expense-insights.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a derived logger carrying err.
	WithError(err error) Logger

	// WithField returns a derived logger carrying a single field.
	WithField(key string, value interface{}) Logger

	// WithFields returns a derived logger carrying all fields.
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
