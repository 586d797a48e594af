package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

const configEnvName = "GIT_SYNC_CONFIG"

// loadSettings builds the run settings from the --config flag, GIT_SYNC_CONFIG
// or an auto-detected file, then the environment. GIT_TOKEN is removed from
// the process environment as soon as it has been read.
func loadSettings(cmd *cobra.Command, lookup entities.LookupFunc) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if configPath == "" {
		if value, ok := lookup(configEnvName); ok {
			configPath = value
		}
	}
	if configPath == "" {
		projectDir, _ := lookup("PROJECT_DIR")
		configPath = entities.FindSettingsFile(projectDir)
	}
	if configPath != "" {
		logger.Infof("Using settings file: %s", configPath)
	}

	settings, err := entities.NewSettings(configPath, lookup)
	if scrubErr := entities.ScrubInlineToken(); scrubErr != nil {
		logger.Warnf("Failed to remove GIT_TOKEN from the environment: %v", scrubErr)
	}
	if err != nil {
		return nil, err
	}

	if verbose {
		settings.Debug = true
	}
	if settings.Debug {
		logger.SetLevel(logger.DebugLevel)
	}
	return settings, nil
}
