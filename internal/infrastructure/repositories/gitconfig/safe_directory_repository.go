package gitconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/config"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/repositories"
)

const (
	safeSection   = "safe"
	directoryKey  = "directory"
	configMode    = 0o644
	configDirMode = 0o755
	lockSuffix    = ".lock"
	lockTimeout   = 10 * time.Second
	lockRetry     = 100 * time.Millisecond
)

// SafeDirectoryRepository adds working trees to safe.directory in a git
// configuration file.
type SafeDirectoryRepository struct{}

// NewSafeDirectoryRepository creates the trust repository.
func NewSafeDirectoryRepository() repositories.TrustRepository {
	return &SafeDirectoryRepository{}
}

// Trust adds dir to safe.directory in configPath unless it is already listed.
// The existing file is kept byte for byte and the entry is appended to it.
func (r *SafeDirectoryRepository) Trust(configPath, dir string) error {
	if configPath == "" {
		return errors.New("no global git config file is known")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	original, cfg, err := readConfig(configPath)
	if err != nil {
		return err
	}
	for _, existing := range cfg.Section(safeSection).Options.GetAll(directoryKey) {
		if existing == abs || existing == "*" {
			logger.Debugf("%s is already a safe directory", abs)
			return nil
		}
	}

	if err = writeConfig(configPath, appendEntry(original, abs)); err != nil {
		return err
	}
	logger.Debugf("Added %s to safe.directory in %s", abs, configPath)
	return nil
}

// readConfig returns the raw file and its parsed form; a missing file is empty.
func readConfig(path string) ([]byte, *config.Config, error) {
	cfg := config.New()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, cfg, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if decodeErr := config.NewDecoder(bytes.NewReader(data)).Decode(cfg); decodeErr != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, decodeErr)
	}
	return data, cfg, nil
}

// appendEntry adds a [safe] section holding dir after the original content.
func appendEntry(original []byte, dir string) []byte {
	var buf bytes.Buffer
	buf.Write(original)
	if len(original) > 0 && !bytes.HasSuffix(original, []byte("\n")) {
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "[%s]\n\t%s = %s\n", safeSection, directoryKey, quoteValue(dir))
	return buf.Bytes()
}

// quoteValue quotes a value the way git config expects when it holds
// comment characters, quotes, backslashes or surrounding spaces.
func quoteValue(value string) string {
	if !strings.ContainsAny(value, `"\#;`) && strings.TrimSpace(value) == value {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

// writeConfig follows git's own lockfile protocol: the new content is
// written to <path>.lock, created exclusively, and renamed over path. A
// concurrent git process therefore either waits for us or makes us retry.
func writeConfig(path string, content []byte) error {
	mode := os.FileMode(configMode)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	lockPath := path + lockSuffix
	lockFile, err := createLockFile(lockPath, mode)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			_ = os.Remove(lockPath)
		}
	}()

	if _, err = lockFile.Write(content); err != nil {
		_ = lockFile.Close()
		return err
	}
	if err = lockFile.Close(); err != nil {
		return err
	}
	if err = os.Rename(lockPath, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", lockPath, path, err)
	}
	success = true
	return nil
}

func createLockFile(lockPath string, mode os.FileMode) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), configDirMode); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(lockTimeout)
	for {
		file, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, os.ErrExist) || time.Now().After(deadline) {
			return nil, fmt.Errorf("could not lock %s: %w", lockPath, err)
		}
		time.Sleep(lockRetry)
	}
}
