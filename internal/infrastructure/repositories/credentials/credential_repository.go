package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/domain/repositories"
	"github.com/rios0rios0/secureclone/internal/infrastructure/logging"
)

// CredentialRepository reads the token from the mounted secret file and
// falls back to the inline GIT_TOKEN value.
type CredentialRepository struct {
	redaction *logging.RedactionHook
}

// NewCredentialRepository creates the broker. Every materialized credential
// is watched by the redaction hook.
func NewCredentialRepository(redaction *logging.RedactionHook) repositories.CredentialRepository {
	return &CredentialRepository{redaction: redaction}
}

func (r *CredentialRepository) Materialize(
	_ context.Context,
	settings *entities.Settings,
	username string,
) (*entities.Credential, error) {
	token, err := readTokenFile(settings.TokenFile)
	if err != nil {
		return nil, err
	}

	source := entities.CredentialSourceFile
	if len(token) == 0 {
		if settings.InlineToken == "" {
			return nil, fmt.Errorf(
				"%w: no token in %s and GIT_TOKEN is not set", entities.ErrCredential, settings.TokenFile,
			)
		}
		logger.Warn("Using the token from GIT_TOKEN; prefer a mounted token file (GIT_TOKEN_FILE)")
		token = []byte(settings.InlineToken)
		source = entities.CredentialSourceEnv
	}

	credential := entities.NewCredential(username, token, source)
	wipe(token)
	if r.redaction != nil {
		r.redaction.Watch(credential)
	}
	logger.Infof("Credential loaded: %s", credential)
	return credential, nil
}

// readTokenFile returns nil when the file is missing or holds only line breaks.
func readTokenFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debugf("Token file %s does not exist", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read token file %s: %w", entities.ErrCredential, path, err)
	}
	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		logger.Warnf("Token file %s is empty", path)
		return nil, nil
	}
	return trimmed, nil
}

func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
