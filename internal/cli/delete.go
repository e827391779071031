package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/lifecycle"
	"github.com/pygame-manager/pgm/internal/models"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App

	force bool
}

// NewDeleteCommand creates a new delete command
func NewDeleteCommand(app *App) *cobra.Command {
	cmd := &DeleteCommand{app: app}

	cobraCmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"remove", "del", "rm"},
		Short:   "Delete a project",
		Long: `Permanently deletes a project folder after a confirmation and a short
countdown that can still be aborted.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.force, "force", "f", false, "Delete without confirmation")

	return cobraCmd
}

// Run executes the delete command
func (c *DeleteCommand) Run(cmd *cobra.Command, args []string) error {
	name := args[0]

	if !c.force {
		if err := c.app.requireInteractive("pass --force to delete without confirmation"); err != nil {
			return err
		}
	}

	path, err := c.app.Lifecycle.Delete(cmd.Context(), name, lifecycle.DeleteOptions{
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

	fmt.Fprintf(c.app.Stdout, "✓ Deleted '%s' (%s)\n", name, path)
	return nil
}
