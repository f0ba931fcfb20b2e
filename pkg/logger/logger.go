package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func build(serviceName string, level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func Init(serviceName string, level string) {
	log = build(serviceName, level, os.Stdout)
}

func InitWithWriter(serviceName string, level string, w io.Writer) {
	log = build(serviceName, level, w)
}

// InitWithFile пишет JSON в stdout и дублирует записи не ниже fileLevel в <dir>/api_log.txt
// Возвращенный FileSink нужно закрыть при остановке сервиса
func InitWithFile(serviceName string, level string, dir string, fileLevel string) (*FileSink, error) {
	sink, err := NewFileSink(dir, parseLevel(fileLevel))
	if err != nil {
		return nil, err
	}

	log = build(serviceName, level, zerolog.MultiLevelWriter(os.Stdout, sink))
	return sink, nil
}

// Logger возвращает текущий логгер, например для передачи в сторонние компоненты
func Logger() zerolog.Logger {
	return log
}

func Info() *zerolog.Event {
	return log.Info()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}

func With() zerolog.Context {
	return log.With()
}

func WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := log.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
