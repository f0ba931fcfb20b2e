package logger

import (
	"strings"

	"github.com/rs/zerolog"
)

// LevelWriter превращает строки сторонних логгеров (gorm, stdlib log) в записи zerolog с заданным уровнем
// Без уровня такие записи проходили бы мимо минимального уровня файла логов
type LevelWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func NewLevelWriter(l zerolog.Logger, level zerolog.Level) *LevelWriter {
	return &LevelWriter{logger: l, level: level}
}

func (w *LevelWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.logger.WithLevel(w.level).Msg(msg)
	}
	return len(p), nil
}
