package watermillx

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// OTelFilteredSlogLogger adapts slog for watermill and drops records the
// OpenTelemetry logger provider would not export anyway.
type OTelFilteredSlogLogger struct {
	logger     *slog.Logger
	minLevel   slog.Level
	otelLogger log.Logger
}

func NewOTelFilteredSlogLogger(logger *slog.Logger, minLevel slog.Level) watermill.LoggerAdapter {
	return &OTelFilteredSlogLogger{
		logger:     logger,
		minLevel:   minLevel,
		otelLogger: global.GetLoggerProvider().Logger("watermill"),
	}
}

func (l *OTelFilteredSlogLogger) enabled(level slog.Level) bool {
	if level < l.minLevel {
		return false
	}

	severity := log.SeverityTrace
	switch {
	case level >= slog.LevelError:
		severity = log.SeverityError
	case level >= slog.LevelWarn:
		severity = log.SeverityWarn
	case level >= slog.LevelInfo:
		severity = log.SeverityInfo
	case level >= slog.LevelDebug:
		severity = log.SeverityDebug
	}

	return l.otelLogger.Enabled(context.Background(), log.EnabledParameters{Severity: severity})
}

func (l *OTelFilteredSlogLogger) Error(msg string, err error, fields watermill.LogFields) {
	if l.enabled(slog.LevelError) {
		l.logger.Error(msg, l.attrs(fields, slog.Any("error", err))...)
	}
}

func (l *OTelFilteredSlogLogger) Info(msg string, fields watermill.LogFields) {
	if l.enabled(slog.LevelInfo) {
		l.logger.Info(msg, l.attrs(fields)...)
	}
}

func (l *OTelFilteredSlogLogger) Debug(msg string, fields watermill.LogFields) {
	if l.enabled(slog.LevelDebug) {
		l.logger.Debug(msg, l.attrs(fields)...)
	}
}

func (l *OTelFilteredSlogLogger) Trace(msg string, fields watermill.LogFields) {
	if l.minLevel < slog.LevelDebug {
		l.logger.Debug(msg, l.attrs(fields)...)
	}
}

func (l *OTelFilteredSlogLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &OTelFilteredSlogLogger{
		logger:     l.logger.With(l.attrs(fields)...),
		minLevel:   l.minLevel,
		otelLogger: l.otelLogger,
	}
}

func (l *OTelFilteredSlogLogger) attrs(fields watermill.LogFields, extra ...slog.Attr) []any {
	attrs := make([]any, 0, len(fields)+len(extra))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	for _, attr := range extra {
		attrs = append(attrs, attr)
	}
	return attrs
}
