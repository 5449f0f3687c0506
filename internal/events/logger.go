package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// zapLoggerAdapter bridges watermill's logger to the application zap logger.
type zapLoggerAdapter struct {
	log *zap.Logger
}

func NewWatermillLogger(log *zap.Logger) watermill.LoggerAdapter {
	return &zapLoggerAdapter{log: log.With(zap.String("component", "events"))}
}

func (l *zapLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.log.Error(msg, append(convertFields(fields), zap.Error(err))...)
}

func (l *zapLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.log.Info(msg, convertFields(fields)...)
}

func (l *zapLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.log.Debug(msg, convertFields(fields)...)
}

func (l *zapLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.log.Debug(msg, convertFields(fields)...)
}

func (l *zapLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zapLoggerAdapter{log: l.log.With(convertFields(fields)...)}
}

func convertFields(fields watermill.LogFields) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
