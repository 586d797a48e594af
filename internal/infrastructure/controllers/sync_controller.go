package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/secureclone/internal/domain/commands"
	"github.com/rios0rios0/secureclone/internal/domain/entities"
	"github.com/rios0rios0/secureclone/internal/infrastructure/logging"
)

// SyncController handles the "sync" subcommand and the bare root command.
type SyncController struct {
	command   commands.Sync
	redaction *logging.RedactionHook
	lookup    entities.LookupFunc
}

// NewSyncController creates a new SyncController.
func NewSyncController(command commands.Sync, redaction *logging.RedactionHook) *SyncController {
	return &SyncController{command: command, redaction: redaction, lookup: os.LookupEnv}
}

// GetBind returns the Cobra command metadata for the sync controller.
func (it *SyncController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "sync [-- command [args...]]",
		Short: "Clone or update every configured repository",
		Long: `Resolve GIT_URL, GIT_REPO and GIT_REPOS, then clone each repository into
$PROJECT_DIR/repos/<name> or fast-forward the existing clone.

The token is read from GIT_TOKEN_FILE (default /run/secrets/git_token), or
from GIT_TOKEN with a warning. It never appears on a command line, in a git
configuration file or in the log.

When a command follows "--", it is executed after a successful
synchronization with the credential already wiped, and its exit code
becomes the exit code of secureclone.`,
	}
}

// Execute runs one synchronization and then the optional follow-on command.
func (it *SyncController) Execute(cmd *cobra.Command, arguments []string) error {
	settings, err := loadSettings(cmd, it.lookup)
	if err != nil {
		return err
	}

	logFile := logging.Configure(settings, it.redaction)
	defer func() {
		if closeErr := logFile.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Starting secure clone into %s", settings.ReposRoot())
	if _, runErr := it.command.Execute(ctx, settings); runErr != nil {
		if entities.IsFatal(runErr) {
			logger.Errorf("Aborted before any repository was touched: %v", runErr)
		} else {
			logger.Errorf("Synchronization failed: %v", runErr)
		}
		return runErr
	}
	logger.Info("All repositories are synchronized")

	if len(arguments) == 0 {
		return nil
	}
	return runFollowOn(arguments)
}

// runFollowOn runs the command with the terminal attached. GIT_TOKEN has
// already been removed from the environment it inherits.
func runFollowOn(arguments []string) error {
	logger.Infof("Handing over to %s", arguments[0])

	//nolint:gosec // the operator chooses the follow-on command
	child := exec.Command(arguments[0], arguments[1:]...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	err := child.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Err: err}
	}
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", arguments[0], err)
	}
	return nil
}
