package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDirMode    = 0o755
	maxSizeMB     = 50
	maxAgeDays    = 30
	maxBackups    = 5
	timestampForm = "2006-01-02 15:04:05"
)

// FileHook appends one plain-text timestamped line per entry to a log file.
type FileHook struct {
	writer    io.WriteCloser
	formatter logger.Formatter
}

// NewFileHook opens the log file through a rotating writer, creating its
// directory when needed.
func NewFileHook(path string) (*FileHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxAge:     maxAgeDays,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}
	return newFileHook(writer), nil
}

func newFileHook(writer io.WriteCloser) *FileHook {
	return &FileHook{
		writer: writer,
		formatter: &logger.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampForm,
		},
	}
}

func (h *FileHook) Levels() []logger.Level {
	return logger.AllLevels
}

func (h *FileHook) Fire(entry *logger.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

func (h *FileHook) Close() error {
	return h.writer.Close()
}
