package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pygame-manager/pgm/internal/build"
	"github.com/pygame-manager/pgm/internal/tui"
)

// BuildCommand handles the build command
type BuildCommand struct {
	app *App

	web      bool
	cdn      string
	template string
	output   string
	archive  bool
}

// NewBuildCommand creates a new build command
func NewBuildCommand(app *App) *cobra.Command {
	cmd := &BuildCommand{app: app}

	cobraCmd := &cobra.Command{
		Use:     "build NAME",
		Aliases: []string{"make", "compile"},
		Short:   "Build a project into a distributable",
		Long: `Builds a native executable with cx_Freeze, or a web bundle with pygbag when
--web is given. License notices for every dependency are collected into the
output's licenses folder.

Native builds need the project to have been run at least once so that its
__pycache__ exists.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.web, "web", "w", false, "Build a web bundle with pygbag")
	cobraCmd.Flags().StringVar(&cmd.cdn, "cdn", "", "CDN pygbag loads its runtime from")
	cobraCmd.Flags().StringVar(&cmd.template, "template", "", "HTML template passed to pygbag")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output directory (default ./build)")
	cobraCmd.Flags().BoolVar(&cmd.archive, "archive", false, "Also pack the output into a .tar.zst archive")

	return cobraCmd
}

// Run executes the build command
func (c *BuildCommand) Run(cmd *cobra.Command, args []string) error {
	out := c.app.Stdout
	name := args[0]

	kind := "native"
	if c.web {
		kind = "web"
	}
	fmt.Fprintf(out, "🔨 Building '%s' (%s)\n", name, kind)

	req := build.Request{
		Name:     name,
		Web:      c.web,
		Output:   c.output,
		CDN:      c.cdn,
		Template: c.template,
		Archive:  c.archive,
		Reporter: &stepReporter{out: out},
	}
	if c.app.verbose {
		req.ToolOutput = c.app.Stderr
	}

	result, err := c.app.Pipeline.Build(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.SuccessStyle.Render(fmt.Sprintf("✓ Build completed in %.2fs", result.Elapsed.Seconds())))
	fmt.Fprintf(out, "  Build ID: %s\n", result.BuildID)
	fmt.Fprintf(out, "  Output:   %s\n", result.Output)
	if result.Executable != "" {
		fmt.Fprintf(out, "  Run:      %s\n", result.Executable)
	}
	fmt.Fprintf(out, "  Licenses: %d written", result.Licenses.Written)
	if n := len(result.Licenses.Failures); n > 0 {
		fmt.Fprintf(out, ", %s", tui.WarnStyle.Render(fmt.Sprintf("%d failed", n)))
	}
	fmt.Fprintln(out)
	if a := result.Archive; a != nil {
		fmt.Fprintf(out, "  Archive:  %s (%s)\n", a.Path, humanize.Bytes(uint64(a.Size)))
		fmt.Fprintf(out, "  BLAKE3:   %s\n", a.Digest)
	}

	return nil
}
