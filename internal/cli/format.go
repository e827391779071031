package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/lifecycle"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/tui"
)

// FormatCommand handles the format command
type FormatCommand struct {
	app *App

	force bool
}

// NewFormatCommand creates a new format command
func NewFormatCommand(app *App) *cobra.Command {
	cmd := &FormatCommand{app: app}

	cobraCmd := &cobra.Command{
		Use:     "format",
		Aliases: []string{"reset"},
		Short:   "Delete every project",
		Long: `Deletes the whole projects root. You are asked to type back a random code
before anything is removed.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.force, "force", "f", false, "Delete without confirmation")

	return cobraCmd
}

// Run executes the format command
func (c *FormatCommand) Run(cmd *cobra.Command, args []string) error {
	if !c.force {
		if err := c.app.requireInteractive("pass --force to delete without confirmation"); err != nil {
			return err
		}
		fmt.Fprintln(c.app.Stdout, tui.WarnStyle.Render("⚠️  This deletes ALL projects and cannot be undone"))
	}

	root, err := c.app.Lifecycle.Format(cmd.Context(), lifecycle.FormatOptions{
		Force:     c.force,
		Confirmer: c.app.Confirmer,
	})
	if errors.Is(err, models.ErrCancelled) {
		fmt.Fprintln(c.app.Stdout, "No action taken")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.app.Stdout, "✓ Removed all projects from %s\n", root)
	return nil
}
