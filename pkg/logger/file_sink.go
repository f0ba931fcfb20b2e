package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// LogFileName - имя файла журнала внутри каталога логов
const LogFileName = "api_log.txt"

// FileSink дописывает записи в текстовый журнал в человекочитаемом виде
// Записи ниже минимального уровня отбрасываются
// Если запись в файл не удалась, строка уходит в stderr
type FileSink struct {
	mu        sync.Mutex
	file      *os.File
	formatter zerolog.ConsoleWriter
	minLevel  zerolog.Level
	fallback  io.Writer
}

// NewFileSink открывает (или создает) <dir>/api_log.txt в режиме дозаписи
func NewFileSink(dir string, minLevel zerolog.Level) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileSink{
		file: file,
		formatter: zerolog.ConsoleWriter{
			Out:        file,
			NoColor:    true,
			TimeFormat: "2006-01-02 15:04:05",
		},
		minLevel: minLevel,
		fallback: os.Stderr,
	}, nil
}

// Path возвращает полный путь к файлу журнала
func (s *FileSink) Path() string {
	return s.file.Name()
}

func (s *FileSink) Enabled(level zerolog.Level) bool {
	return level >= s.minLevel
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.NoLevel, p)
}

func (s *FileSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if !s.Enabled(level) {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.formatter.Write(p); err != nil {
		fmt.Fprintf(s.fallback, "failed to write log file: %v: %s", err, p)
	}

	// Ошибка файла не должна ломать остальные writer'ы MultiLevelWriter
	return len(p), nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
