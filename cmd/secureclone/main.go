package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/secureclone/internal"
	"github.com/rios0rios0/secureclone/internal/infrastructure/controllers"
)

func buildRootCommand(syncController *controllers.SyncController) *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "secureclone [-- command [args...]]",
		Short: "Secure multi-repository clone and update",
		Long: `Clone or fast-forward a set of private Git repositories into
$PROJECT_DIR/repos using a mounted credential file.

Repositories are given as full URLs (GIT_URL) or as slugs (GIT_REPO,
GIT_REPOS) expanded for GitHub, GitLab or Azure DevOps.

Usage modes:
  secureclone                    Synchronize (same as "secureclone sync")
  secureclone -- zsh             Synchronize, then hand over to a shell
  secureclone resolve            Show what would be cloned`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          syncController.Execute,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to settings file (default: $GIT_SYNC_CONFIG or auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			RunE:  controller.Execute,
		}
		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// Inject controllers via DIG
	appContext, syncController := injectAppContext()
	cobraRoot := buildRootCommand(syncController)

	// Add all subcommands
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Errorf("Error executing 'secureclone': %s", err)
		os.Exit(controllers.ExitCode(err))
	}
}
