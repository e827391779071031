package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExploreCommand handles the explore command
type ExploreCommand struct {
	app *App
}

// NewExploreCommand creates a new explore command
func NewExploreCommand(app *App) *cobra.Command {
	cmd := &ExploreCommand{app: app}

	return &cobra.Command{
		Use:     "explore NAME",
		Aliases: []string{"browse", "folder", "files"},
		Short:   "Open a project folder in the file browser",
		Args:    cobra.ExactArgs(1),
		RunE:    cmd.Run,
	}
}

// Run executes the explore command
func (c *ExploreCommand) Run(cmd *cobra.Command, args []string) error {
	path, err := c.app.Player.Explore(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.app.Stdout, "📂 Opened %s\n", path)
	return nil
}
