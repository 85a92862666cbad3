package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// logrusLogger implements Logger on top of a logrus entry
type logrusLogger struct {
	entry *logrus.Entry
	level Level
}

// NewLogrusLogger creates a new Logger backed by logrus
func NewLogrusLogger(cfg Config) Logger {
	l := logrus.New()
	l.SetLevel(toLogrusLevel(cfg.Level))
	l.SetReportCaller(cfg.AddSource)

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	switch cfg.Format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	return &logrusLogger{entry: logrus.NewEntry(l), level: cfg.Level}
}

func toLogrusLevel(l Level) logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func (l *logrusLogger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *logrusLogger) With(fields ...Field) Logger {
	return &logrusLogger{
		entry: l.entry.WithFields(toLogrusFields(fields)),
		level: l.level,
	}
}

func (l *logrusLogger) WithContext(ctx context.Context) Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (l *logrusLogger) Level() Level {
	return l.level
}
