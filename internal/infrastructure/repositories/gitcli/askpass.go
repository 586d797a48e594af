package gitcli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

const (
	askpassDirPattern = "secureclone-askpass-*"
	askpassFileName   = "askpass.sh"
	scriptFileMode    = 0o700

	usernameEnv = "SECURECLONE_ASKPASS_USERNAME"
	tokenEnv    = "SECURECLONE_ASKPASS_TOKEN"
)

// askpassScript never contains the secret: it echoes values that exist only
// in the environment of the git child process.
const askpassScript = `#!/bin/sh
case "$1" in
  *[Uu]sername*) printf '%s\n' "$` + usernameEnv + `" ;;
  *) printf '%s\n' "$` + tokenEnv + `" ;;
esac
`

// AskpassHandle is the temporary GIT_ASKPASS program of a session. The file
// is removed on Close or when the process receives an interrupt signal.
type AskpassHandle struct {
	dir  string
	path string

	// mu guards username and token, which Close clears from the signal watcher.
	mu       sync.RWMutex
	username string
	token    string

	once    sync.Once
	done    chan struct{}
	signals chan os.Signal
}

// NewAskpassHandle writes the helper script and starts watching for
// termination signals.
func NewAskpassHandle(prompter entities.Prompter) (*AskpassHandle, error) {
	dir, err := os.MkdirTemp("", askpassDirPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create askpass directory: %w", err)
	}

	path := filepath.Join(dir, askpassFileName)
	if writeErr := os.WriteFile(path, []byte(askpassScript), scriptFileMode); writeErr != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write askpass helper: %w", writeErr)
	}

	handle := &AskpassHandle{
		dir:      dir,
		path:     path,
		username: prompter.Respond("Username"),
		token:    prompter.Respond("Password"),
		done:     make(chan struct{}),
		signals:  make(chan os.Signal, 1),
	}
	signal.Notify(handle.signals, os.Interrupt, syscall.SIGTERM)
	go handle.watch()

	logger.Debugf("Installed askpass helper at %s", path)
	return handle, nil
}

// Path is the value for GIT_ASKPASS.
func (h *AskpassHandle) Path() string {
	return h.path
}

// Env returns the variables a git child process needs to use the helper.
// After Close the credential variables are empty.
func (h *AskpassHandle) Env() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return []string{
		"GIT_ASKPASS=" + h.path,
		"GIT_TERMINAL_PROMPT=0",
		usernameEnv + "=" + h.username,
		tokenEnv + "=" + h.token,
	}
}

// Close removes the helper. It is safe to call more than once.
func (h *AskpassHandle) Close() error {
	var err error
	h.once.Do(func() {
		signal.Stop(h.signals)
		close(h.done)
		h.mu.Lock()
		h.username, h.token = "", ""
		h.mu.Unlock()
		if removeErr := os.RemoveAll(h.dir); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = fmt.Errorf("failed to remove askpass helper %s: %w", h.path, removeErr)
		}
	})
	return err
}

func (h *AskpassHandle) watch() {
	select {
	case sig := <-h.signals:
		logger.Warnf("Received %s, removing askpass helper", sig)
		if err := h.Close(); err != nil {
			logger.Error(err)
		}
	case <-h.done:
	}
}
