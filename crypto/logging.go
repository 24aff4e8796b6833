package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LoggerHelper carries the standard fields of one cipher operation.
// Keys and texts never go into these fields; log sizes and KeyFingerprint.
type LoggerHelper struct {
	function string
	pkg      string
	fields   logrus.Fields
}

// NewLogger creates a logger helper tagged with function and package.
func NewLogger(function string) *LoggerHelper {
	return &LoggerHelper{
		function: function,
		pkg:      "crypto",
		fields: logrus.Fields{
			"function": function,
			"package":  "crypto",
		},
	}
}

// WithField adds a custom field to the logger
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	l.fields[key] = value
	return l
}

// WithFields adds multiple custom fields to the logger
func (l *LoggerHelper) WithFields(fields logrus.Fields) *LoggerHelper {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

// WithError records err with its kind (validation, invariant, codec, io) and
// the step that produced it.
func (l *LoggerHelper) WithError(err error, errorType, operation string) *LoggerHelper {
	l.fields["error"] = err.Error()
	l.fields["error_type"] = errorType
	l.fields["operation"] = operation
	return l
}

// Entry logs function entry
func (l *LoggerHelper) Entry(message string) {
	logrus.WithFields(l.fields).Debug(fmt.Sprintf("Function entry: %s", message))
}

// Exit logs function exit
func (l *LoggerHelper) Exit() {
	logrus.WithFields(l.fields).Debug(fmt.Sprintf("Function exit: %s", l.function))
}

// Debug logs a debug message
func (l *LoggerHelper) Debug(message string) {
	logrus.WithFields(l.fields).Debug(message)
}

// Info logs an info message
func (l *LoggerHelper) Info(message string) {
	logrus.WithFields(l.fields).Info(message)
}

// Warn logs a warning message
func (l *LoggerHelper) Warn(message string) {
	logrus.WithFields(l.fields).Warn(message)
}

// Error logs an error message
func (l *LoggerHelper) Error(message string) {
	logrus.WithFields(l.fields).Error(message)
}

// OperationFields creates standardized operation logging fields
func OperationFields(operation, status string, additional ...logrus.Fields) logrus.Fields {
	fields := logrus.Fields{
		"operation": operation,
		"status":    status,
	}

	for _, extra := range additional {
		for k, v := range extra {
			fields[k] = v
		}
	}

	return fields
}
