package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/lifecycle"
)

// CloneCommand handles the clone command
type CloneCommand struct {
	app *App

	name string
}

// NewCloneCommand creates a new clone command
func NewCloneCommand(app *App) *cobra.Command {
	cmd := &CloneCommand{app: app}

	cobraCmd := &cobra.Command{
		Use:     "clone SOURCE",
		Aliases: []string{"git"},
		Short:   "Clone a project from a git repository",
		Long: `Clones a git repository into the projects root and sets up its Python
environment. SOURCE is any URL git understands or a GitHub owner/repo
shorthand. The clone is removed again unless it holds a valid project.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.name, "name", "n", "", "Project name (default: derived from SOURCE)")

	return cobraCmd
}

// Run executes the clone command
func (c *CloneCommand) Run(cmd *cobra.Command, args []string) error {
	source := args[0]
	fmt.Fprintf(c.app.Stdout, "📥 Cloning %s...\n", source)

	path, err := c.app.Lifecycle.Clone(cmd.Context(), source, lifecycle.CloneOptions{Name: c.name})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.app.Stdout, "✓ Cloned into %s\n", path)
	return nil
}
