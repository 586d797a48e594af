package controllers

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/secureclone/internal/domain/commands"
	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

const (
	tabMinWidth = 0
	tabWidth    = 8
	tabPadding  = 2
)

// ResolveController handles the "resolve" subcommand.
type ResolveController struct {
	command commands.Resolve
	lookup  entities.LookupFunc
}

// NewResolveController creates a new ResolveController.
func NewResolveController(command commands.Resolve) *ResolveController {
	return &ResolveController{command: command, lookup: os.LookupEnv}
}

// GetBind returns the Cobra command metadata for the resolve controller.
func (it *ResolveController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "resolve",
		Short: "Print the clone URL and directory of every configured reference",
		Long: `Expand GIT_URL, GIT_REPO and GIT_REPOS the same way sync does and print
one line per repository: directory name, clone URL and branch.

No credential is read, nothing is written and no network access happens.`,
	}
}

// Execute prints the resolved references.
func (it *ResolveController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, it.lookup)
	if err != nil {
		return err
	}

	repos, err := it.command.Execute(settings)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), tabMinWidth, tabWidth, tabPadding, ' ', 0)
	fmt.Fprintln(writer, "NAME\tURL\tBRANCH\tPROVIDER")
	for _, repo := range repos {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", repo.Name, repo.RedactedURL(), repo.Branch, repo.Provider)
	}
	return writer.Flush()
}
