package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/play"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/tui"
)

// RunCommand handles the run command
type RunCommand struct {
	app *App

	web      bool
	cdn      string
	template string
}

// NewRunCommand creates a new run command
func NewRunCommand(app *App) *cobra.Command {
	cmd := &RunCommand{app: app}

	cobraCmd := &cobra.Command{
		Use:     "run NAME",
		Aliases: []string{"start", "open", "play"},
		Short:   "Run a project",
		Long: `Installs the project's requirements into its environment and runs main.py,
streaming its output. With --web the project is served by pygbag and opened
in the browser instead; press Ctrl+C to stop the server.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.web, "web", "w", false, "Serve the project in the browser with pygbag")
	cobraCmd.Flags().StringVar(&cmd.cdn, "cdn", "", "CDN pygbag loads its runtime from")
	cobraCmd.Flags().StringVar(&cmd.template, "template", "", "HTML template passed to pygbag")

	return cobraCmd
}

// Run executes the run command
func (c *RunCommand) Run(cmd *cobra.Command, args []string) error {
	if c.web {
		return c.runWeb(cmd.Context(), args[0])
	}
	return c.runLocal(cmd.Context(), args[0])
}

func (c *RunCommand) runLocal(ctx context.Context, name string) error {
	out := c.app.Stdout
	fmt.Fprintf(out, "▶ Running '%s'...\n", name)

	err := c.app.Player.Local(ctx, name, func(elapsed time.Duration, line string) {
		fmt.Fprintf(out, "%s %s\n", tui.SubtleStyle.Render(fmt.Sprintf("[%.2f]", elapsed.Seconds())), line)
	})
	if err == nil {
		fmt.Fprintf(out, "✓ '%s' exited\n", name)
		return nil
	}

	if ctx.Err() != nil {
		fmt.Fprintf(out, "⚠️  '%s' was interrupted\n", name)
		return nil
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		path, _ := c.app.Lifecycle.Path(name)
		crash := ParseCrash(exitErr.Stderr, path)
		fmt.Fprintln(c.app.Stderr, tui.BorderStyle.Render(crash.Text(name, exitErr.Code)))
		return fmt.Errorf("'%s' crashed with exit code %d", name, exitErr.Code)
	}
	return err
}

func (c *RunCommand) runWeb(ctx context.Context, name string) error {
	out := c.app.Stdout

	err := c.app.Player.Web(ctx, name, play.WebOptions{
		CDN:      c.cdn,
		Template: c.template,
		Ready: func(url string) {
			fmt.Fprintf(out, "🌐 Serving '%s' at %s\n", name, url)
			fmt.Fprintln(out, tui.HelpStyle.Render("Press Ctrl+C to stop the server"))
		},
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "✓ Server stopped")
		return nil
	}
	return err
}
