package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/tui"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new list command
func NewListCommand(app *App) *cobra.Command {
	cmd := &ListCommand{app: app}

	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all projects",
		Args:    cobra.NoArgs,
		RunE:    cmd.Run,
	}
}

// Run executes the list command
func (c *ListCommand) Run(cmd *cobra.Command, args []string) error {
	names, err := c.app.Lifecycle.List()
	if err != nil {
		return err
	}

	out := c.app.Stdout
	if len(names) == 0 {
		fmt.Fprintln(out, "No projects found. Create one with 'pgm new NAME'.")
		return nil
	}

	fmt.Fprintln(out, tui.TitleStyle.Render(fmt.Sprintf("📦 %d project(s)", len(names))))
	for _, name := range names {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	return nil
}
