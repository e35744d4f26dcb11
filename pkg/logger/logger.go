package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a leveled, structured logger. Extra arguments to each method are
// alternating key/value pairs.
type Logger struct {
	level string
	s     *zap.SugaredLogger
}

func New(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
		level = "info"
	}
	cfg.Level = lvl

	z, err := cfg.Build()
	if err != nil {
		os.Stderr.WriteString("logger: falling back to development config: " + err.Error() + "\n")
		z = zap.NewExample()
	}
	return &Logger{level: level, s: z.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{level: "info", s: zap.NewNop().Sugar()}
}

// With returns a child logger that always carries the given pairs.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{level: l.level, s: l.s.With(kv...)}
}

func (l *Logger) Level() string {
	return l.level
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.s.Infow(msg, kv...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.s.Errorw(msg, kv...)
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.s.Debugw(msg, kv...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.s.Warnw(msg, kv...)
}

func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.s.Fatalw(msg, kv...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.s.Sync()
}
