package logging

import (
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"
)

const mask = "****"

// Secret is anything that can report the value to hide. An empty value is
// ignored, so a wiped credential stops being tracked without a copy.
type Secret interface {
	Token() string
}

// RedactionHook replaces every watched secret in the message and string
// fields of a log entry before any formatter or other hook sees it.
type RedactionHook struct {
	mu      sync.RWMutex
	secrets []Secret
}

// NewRedactionHook creates a hook that watches no secret yet.
func NewRedactionHook() *RedactionHook {
	return &RedactionHook{}
}

// Watch starts hiding the value of secret.
func (h *RedactionHook) Watch(secret Secret) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.secrets = append(h.secrets, secret)
}

func (h *RedactionHook) Levels() []logger.Level {
	return logger.AllLevels
}

func (h *RedactionHook) Fire(entry *logger.Entry) error {
	entry.Message = h.Redact(entry.Message)
	for key, value := range entry.Data {
		switch typed := value.(type) {
		case string:
			entry.Data[key] = h.Redact(typed)
		case error:
			if redacted := h.Redact(typed.Error()); redacted != typed.Error() {
				entry.Data[key] = redacted
			}
		}
	}
	return nil
}

// Redact returns text with every watched secret replaced by a mask.
func (h *RedactionHook) Redact(text string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, secret := range h.secrets {
		if value := secret.Token(); value != "" {
			text = strings.ReplaceAll(text, value, mask)
		}
	}
	return text
}
