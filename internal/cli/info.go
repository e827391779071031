package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/tui"
)

// InfoCommand handles the info command
type InfoCommand struct {
	app *App
}

// NewInfoCommand creates a new info command
func NewInfoCommand(app *App) *cobra.Command {
	cmd := &InfoCommand{app: app}

	return &cobra.Command{
		Use:     "info NAME",
		Aliases: []string{"metadata"},
		Short:   "Show a project's metadata",
		Args:    cobra.ExactArgs(1),
		RunE:    cmd.Run,
	}
}

// Run executes the info command
func (c *InfoCommand) Run(cmd *cobra.Command, args []string) error {
	meta, err := c.app.Lifecycle.Info(args[0])
	if err != nil {
		return err
	}

	tags := "-"
	if len(meta.Tags) > 0 {
		tags = strings.Join(meta.Tags, ", ")
	}

	out := c.app.Stdout
	fmt.Fprintln(out, tui.TitleStyle.Render(meta.Name))
	for _, field := range []struct{ label, value string }{
		{"Description", meta.Description},
		{"Author", meta.Author},
		{"Version", meta.Version},
		{"Tags", tags},
		{"Created", meta.Created},
	} {
		value := field.value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(out, "%s %s\n", tui.LabelStyle.Render(field.label+":"), value)
	}
	return nil
}
