package entities

import (
	"fmt"
	"strings"
)

// CredentialSource records where the token was read from.
type CredentialSource string

const (
	CredentialSourceFile CredentialSource = "file"
	CredentialSourceEnv  CredentialSource = "env"
)

// Prompter answers the authentication prompts of a version-control client.
type Prompter interface {
	Respond(prompt string) string
}

// Credential is the username and token used for every clone operation of
// a run. It lives only in process memory and is wiped when the run ends.
type Credential struct {
	Username string
	Source   CredentialSource
	token    []byte
}

var _ Prompter = (*Credential)(nil)

// NewCredential copies the token so the caller can discard its own buffer.
func NewCredential(username string, token []byte, source CredentialSource) *Credential {
	owned := make([]byte, len(token))
	copy(owned, token)
	return &Credential{Username: username, Source: source, token: owned}
}

// Respond returns the username when the prompt asks for it and the token
// for any other prompt.
func (c *Credential) Respond(prompt string) string {
	if strings.Contains(strings.ToLower(prompt), "username") {
		return c.Username
	}
	return string(c.token)
}

// Token returns a copy of the secret. Callers must not log it.
func (c *Credential) Token() string {
	return string(c.token)
}

// Empty reports whether the credential carries no token, including after Wipe.
func (c *Credential) Empty() bool {
	return len(c.token) == 0
}

// Wipe zeroes the token bytes.
func (c *Credential) Wipe() {
	for i := range c.token {
		c.token[i] = 0
	}
	c.token = nil
}

// String never includes the token.
func (c *Credential) String() string {
	masked := "****"
	if c.Empty() {
		masked = "<empty>"
	}
	return fmt.Sprintf("%s:%s (from %s)", c.Username, masked, c.Source)
}
