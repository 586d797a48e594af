package logging

import (
	"io"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// Configure applies the run settings to the standard logger: debug level,
// the redaction hook and the log file. The returned closer flushes the file.
// A log file that cannot be opened only produces a warning. Hooks from an
// earlier call are replaced, never stacked.
func Configure(settings *entities.Settings, redaction *RedactionHook) io.Closer {
	if settings.Debug {
		logger.SetLevel(logger.DebugLevel)
	}
	hooks := make(logger.LevelHooks)
	hooks.Add(redaction)

	if settings.LogFile == "" {
		logger.StandardLogger().ReplaceHooks(hooks)
		return nopCloser{}
	}
	hook, err := NewFileHook(settings.LogFile)
	if err != nil {
		logger.StandardLogger().ReplaceHooks(hooks)
		logger.Warnf("Logging to stderr only: %v", err)
		return nopCloser{}
	}
	hooks.Add(hook)
	logger.StandardLogger().ReplaceHooks(hooks)
	logger.Debugf("Appending log lines to %s", settings.LogFile)
	return hook
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
