package logging

import "log/slog"

// BusLogger adapts a *slog.Logger to the bus.Logger interface.
type BusLogger struct {
	logger *slog.Logger
}

// NewBusLogger creates a BusLogger wrapping a slog.Logger.
func NewBusLogger(logger *slog.Logger) *BusLogger {
	return &BusLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *BusLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

// Info logs an info message with optional key-value pairs.
func (l *BusLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

// Error logs an error message with optional key-value pairs.
func (l *BusLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}
