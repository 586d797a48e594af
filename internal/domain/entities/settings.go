package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBranch      = "main"
	DefaultTokenFile   = "/run/secrets/git_token"
	DefaultBackend     = "gogit"
	DefaultGitBinary   = "git"
	DefaultLockTimeout = 30 * time.Second

	reposDirName = "repos"
	logDirName   = "logs"
	logFileName  = "secure-clone.log"
	forceEnabled = "1"
	debugEnabled = "true"
	tokenEnvName = "GIT_TOKEN"
)

// LookupFunc reads one environment variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Settings is the immutable run configuration. It is built once at startup
// and passed by reference; nothing downstream reads the environment again.
type Settings struct {
	URL          string        `yaml:"url"`
	Repo         string        `yaml:"repo"`
	Repos        string        `yaml:"repos"`
	Provider     string        `yaml:"provider"`
	Host         string        `yaml:"host"`
	Branch       string        `yaml:"branch"`
	Username     string        `yaml:"username"`
	TokenFile    string        `yaml:"token_file"`
	ProjectDir   string        `yaml:"project_dir"`
	ForceReclone bool          `yaml:"force_reclone"`
	Backend      string        `yaml:"backend"`
	GitBinary    string        `yaml:"git_binary"`
	LogFile      string        `yaml:"log_file"`
	LockTimeout  time.Duration `yaml:"lock_timeout"`
	OpTimeout    time.Duration `yaml:"op_timeout"`
	GitConfig    string        `yaml:"git_config"`
	Debug        bool          `yaml:"debug"`

	// InlineToken comes only from GIT_TOKEN, never from the settings file.
	InlineToken string `yaml:"-"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings builds the settings from an optional YAML file and the
// environment. Environment variables override values from the file.
func NewSettings(path string, lookup LookupFunc) (*Settings, error) {
	settings := &Settings{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read settings file %q: %w", ErrConfiguration, path, err)
		}
		if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
			return nil, fmt.Errorf("%w: failed to parse settings file: %w", ErrConfiguration, unmarshalErr)
		}
		settings.expand(lookup)
	}

	if err := settings.applyEnv(lookup); err != nil {
		return nil, err
	}
	settings.applyDefaults(lookup)

	return settings, nil
}

// FindSettingsFile searches for a settings file in the project directory and
// the standard locations. It returns an empty string when none is found.
func FindSettingsFile(projectDir string) string {
	locations := []string{projectDir, ".", ".config"}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{
		".secureclone.yaml",
		".secureclone.yml",
		"secureclone.yaml",
		"secureclone.yml",
	}

	for _, loc := range locations {
		if loc == "" {
			continue
		}
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p
			}
		}
	}
	return ""
}

// ReposRoot is the directory every resolved repository is placed under.
func (s *Settings) ReposRoot() string {
	return filepath.Join(s.ProjectDir, reposDirName)
}

// RawReferences returns the operator references in processing order.
func (s *Settings) RawReferences() []string {
	return ParseReferences(s.URL, s.Repo, s.Repos)
}

// Validate fails with ErrConfiguration when the settings cannot drive a run.
func (s *Settings) Validate() error {
	if len(s.RawReferences()) == 0 {
		return fmt.Errorf("%w: one of GIT_URL, GIT_REPO or GIT_REPOS is required", ErrConfiguration)
	}
	if s.Backend != "gogit" && s.Backend != "cli" {
		return fmt.Errorf("%w: unknown backend %q (expected gogit or cli)", ErrConfiguration, s.Backend)
	}
	if s.LockTimeout < 0 || s.OpTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrConfiguration)
	}
	return nil
}

func (s *Settings) applyEnv(lookup LookupFunc) error {
	strs := map[string]*string{
		"GIT_URL":           &s.URL,
		"GIT_REPO":          &s.Repo,
		"GIT_REPOS":         &s.Repos,
		"GIT_PROVIDER":      &s.Provider,
		"GIT_HOST":          &s.Host,
		"GIT_BRANCH":        &s.Branch,
		"GIT_USERNAME":      &s.Username,
		"GIT_TOKEN_FILE":    &s.TokenFile,
		"PROJECT_DIR":       &s.ProjectDir,
		"GIT_SYNC_BACKEND":  &s.Backend,
		"GIT_BINARY":        &s.GitBinary,
		"GIT_SYNC_LOG_FILE": &s.LogFile,
		"GIT_CONFIG_GLOBAL": &s.GitConfig,
		tokenEnvName:        &s.InlineToken,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = value
		}
	}

	if value, ok := lookup("GIT_FORCE_RECLONE"); ok {
		s.ForceReclone = strings.TrimSpace(value) == forceEnabled
	}
	if value, ok := lookup("DEBUG"); ok && value == debugEnabled {
		s.Debug = true
	}

	durations := map[string]*time.Duration{
		"GIT_LOCK_TIMEOUT": &s.LockTimeout,
		"GIT_OP_TIMEOUT":   &s.OpTimeout,
	}
	for key, target := range durations {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: invalid %s %q: %w", ErrConfiguration, key, value, err)
		}
		*target = parsed
	}

	return nil
}

func (s *Settings) applyDefaults(lookup LookupFunc) {
	if s.Branch = SanitizeReference(s.Branch); s.Branch == "" {
		s.Branch = DefaultBranch
	}
	if s.TokenFile == "" {
		s.TokenFile = DefaultTokenFile
	}
	if s.ProjectDir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.ProjectDir = wd
		} else {
			s.ProjectDir = "."
		}
	}
	if s.Backend == "" {
		s.Backend = DefaultBackend
	}
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.GitBinary == "" {
		s.GitBinary = DefaultGitBinary
	}
	if s.LogFile == "" {
		s.LogFile = filepath.Join(s.ProjectDir, logDirName, logFileName)
	}
	if s.LockTimeout == 0 {
		s.LockTimeout = DefaultLockTimeout
	}
	if s.GitConfig == "" {
		s.GitConfig = globalGitConfigPath(lookup)
	}
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	s.Host = strings.TrimSpace(s.Host)
}

// expand resolves ${VAR} placeholders in the path-like settings of a file.
func (s *Settings) expand(lookup LookupFunc) {
	for _, target := range []*string{&s.TokenFile, &s.ProjectDir, &s.LogFile, &s.GitConfig, &s.GitBinary} {
		*target = expandEnv(*target, lookup)
	}
}

func expandEnv(raw string, lookup LookupFunc) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := lookup(varName); ok && val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// globalGitConfigPath mirrors git's lookup order for the global config file.
func globalGitConfigPath(lookup LookupFunc) string {
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		candidate := filepath.Join(xdg, "git", "config")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if home, ok := lookup("HOME"); ok && home != "" {
		return filepath.Join(home, ".gitconfig")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".gitconfig")
	}
	return ""
}

// ScrubInlineToken removes GIT_TOKEN from the process environment so that
// no child process can inherit it.
func ScrubInlineToken() error {
	if err := os.Unsetenv(tokenEnvName); err != nil {
		return errors.Join(ErrCredential, err)
	}
	return nil
}
