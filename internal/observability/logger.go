package observability

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger оборачивает zerolog с key/value API: Info("msg", "key", value, ...)
type Logger struct {
	z    zerolog.Logger
	file *lumberjack.Logger
}

// NewLogger пишет в stderr и, если задан logPath, в ротируемый файл
func NewLogger(logPath, logLevel string) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	l := &Logger{}

	if logPath != "" {
		_ = os.MkdirAll(filepath.Dir(logPath), 0o755)
		l.file = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    20, // MB
			MaxBackups: 6,
			MaxAge:     62, // дней
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, l.file)
	}

	l.z = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l
}

// NewNopLogger для тестов
func NewNopLogger() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// With возвращает логгер с постоянными полями
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{z: l.z.With().Fields(fields).Logger(), file: l.file}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.z.Info().Fields(fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.z.Warn().Fields(fields).Msg(msg)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.z.Error().Fields(fields).Msg(msg)
}

// Close закрывает файл лога
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
