package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileLogger builds a logger that writes JSON lines to logPath and text to
// stderr. The log directory is created if missing. The returned file handle
// is owned by the caller and closed on shutdown.
func FileLogger(level logrus.Level, logPath string) (*os.File, *logrus.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(io.Discard)
	logger.AddHook(&writerHook{
		writer:    f,
		formatter: &logrus.JSONFormatter{},
		levels:    logrus.AllLevels,
	})
	logger.AddHook(&writerHook{
		writer:    os.Stderr,
		formatter: &logrus.TextFormatter{FullTimestamp: true},
		levels:    logrus.AllLevels,
	})
	return f, logger, nil
}

// ConsoleLogger builds a stderr-only logger, used by CLI entrypoints and
// tests where a log file is unwanted.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}
