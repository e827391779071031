package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/lifecycle"
	"github.com/pygame-manager/pgm/internal/models"
)

// NewCommand handles the new command
type NewCommand struct {
	app *App

	description string
	author      string
	version     string
	tags        []string
	input       bool
}

// NewNewCommand creates a new new command
func NewNewCommand(app *App) *cobra.Command {
	cmd := &NewCommand{app: app}

	cobraCmd := &cobra.Command{
		Use:     "new NAME",
		Aliases: []string{"create", "setup", "init"},
		Short:   "Create a new project",
		Long: `Creates a project folder from the starter template, sets up its Python
environment and commits the initial state to a fresh git repository.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.description, "description", "d", "", "Project description")
	cobraCmd.Flags().StringVarP(&cmd.author, "author", "a", "", "Project author (default: current user)")
	cobraCmd.Flags().StringVar(&cmd.version, "project-version", "", "Initial project version (default: "+models.DefaultVersion+")")
	cobraCmd.Flags().StringSliceVarP(&cmd.tags, "tags", "t", nil, "Project tags, repeatable or comma separated")
	cobraCmd.Flags().BoolVarP(&cmd.input, "input", "i", false, "Prompt for the metadata fields")

	return cobraCmd
}

// Run executes the new command
func (c *NewCommand) Run(cmd *cobra.Command, args []string) error {
	opts := lifecycle.CreateOptions{
		Name:        args[0],
		Description: c.description,
		Author:      c.author,
		Version:     c.version,
		Tags:        c.tags,
	}

	if c.input {
		if err := c.app.requireInteractive("drop --input to use the defaults"); err != nil {
			return err
		}
		opts.Prompter = c.app.Prompter
	}

	fmt.Fprintf(c.app.Stdout, "🎮 Creating project '%s'...\n", opts.Name)

	path, err := c.app.Lifecycle.Create(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.app.Stdout, "✓ Created project '%s' at %s\n", opts.Name, path)
	return nil
}
