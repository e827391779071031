package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/lifecycle"
)

// RenameCommand handles the rename command
type RenameCommand struct {
	app *App
}

// NewRenameCommand creates a new rename command
func NewRenameCommand(app *App) *cobra.Command {
	cmd := &RenameCommand{app: app}

	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a project",
		Long: `Updates the name recorded in the project's metadata and moves its folder.
The rest of the metadata file, comments included, is left untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: cmd.Run,
	}
}

// Run executes the rename command
func (c *RenameCommand) Run(cmd *cobra.Command, args []string) error {
	oldName, newName := args[0], args[1]

	path, err := c.app.Lifecycle.Rename(cmd.Context(), oldName, newName)
	if err != nil {
		var moveErr *lifecycle.RenameMoveError
		if errors.As(err, &moveErr) {
			fmt.Fprintf(c.app.Stderr, "⚠️  Metadata of '%s' already names it '%s'; move the folder by hand or rename it back\n", oldName, newName)
		}
		return err
	}

	fmt.Fprintf(c.app.Stdout, "✓ Renamed '%s' to '%s' (%s)\n", oldName, newName, path)
	return nil
}
