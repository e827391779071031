package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/pygame-manager/pgm/internal/build"
	"github.com/pygame-manager/pgm/internal/config"
	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/git"
	"github.com/pygame-manager/pgm/internal/github"
	"github.com/pygame-manager/pgm/internal/license"
	"github.com/pygame-manager/pgm/internal/lifecycle"
	"github.com/pygame-manager/pgm/internal/play"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/registry"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
	"github.com/pygame-manager/pgm/internal/template"
	"github.com/pygame-manager/pgm/internal/tui"
)

// Version is stamped at link time with -ldflags "-X".
var Version = "dev"

// App holds the services commands run against. Services left nil are
// wired from the loaded configuration before the first command runs.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle *lifecycle.Lifecycle
	Pipeline  *build.Pipeline
	Player    *play.Player
	Prompter  lifecycle.Prompter
	Confirmer lifecycle.Confirmer

	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether prompts can be shown.
	Interactive func() bool

	verbose bool
}

// NewApp creates an App writing to the process's standard streams.
func NewApp() *App {
	return &App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// wire loads the configuration and builds every service that is still
// unset.
func (a *App) wire(configPath string) error {
	if a.Stdout == nil {
		a.Stdout = io.Discard
	}
	if a.Stderr == nil {
		a.Stderr = io.Discard
	}
	if a.Interactive == nil {
		a.Interactive = func() bool { return false }
	}

	if a.Logger == nil {
		level := slog.LevelWarn
		if a.verbose {
			level = slog.LevelDebug
		}
		a.Logger = slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: level}))
	}

	if a.Lifecycle != nil && a.Pipeline != nil && a.Player != nil {
		return nil
	}

	if a.Config == nil {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a.Config = cfg
	}
	cfg := a.Config
	a.Logger.Debug("configuration loaded", "projects_root", cfg.ProjectsRoot, "python", cfg.Python)

	fs := filesystem.NewOSFileSystem()
	run := runner.NewOSRunner()
	env := pyenv.NewVenv(fs, run, cfg.Python)
	st := store.New(fs, cfg.ProjectsRoot)

	index := registry.New(cfg.Registry.URL,
		registry.WithTimeout(cfg.Registry.Timeout),
		registry.WithUserAgent(cfg.Registry.UserAgent),
	)
	collector := license.NewCollector(fs, env, index, a.Logger)

	if a.Lifecycle == nil {
		a.Lifecycle = lifecycle.New(st, env, git.NewOSGitClient(), template.NewEmbedded(fs),
			lifecycle.WithCountdown(cfg.Delete.Countdown),
			lifecycle.WithGitHub(github.NewDefaultClient()),
			lifecycle.WithLogger(a.Logger),
		)
	}
	if a.Pipeline == nil {
		a.Pipeline = build.NewPipeline(st, env, run, collector, cfg.Native, a.Logger)
	}
	if a.Player == nil {
		a.Player = play.New(st, env, run, cfg.Web, a.Logger)
	}
	if a.Prompter == nil {
		a.Prompter = tui.NewPrompter()
	}
	if a.Confirmer == nil {
		a.Confirmer = tui.NewConfirmer()
	}
	return nil
}

// NewRootCommand creates the root command
func NewRootCommand(app *App) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "pgm",
		Short: "Manage pygame projects",
		Long: `A CLI tool for managing pygame projects.

Every project lives in its own folder under the projects root with an
isolated Python environment, a git repository and a requirements file.
Projects can be run locally or in the browser and built into a native
executable or a web bundle.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.wire(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $PGM_CONFIG or $XDG_CONFIG_HOME/pgm/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&app.verbose, "verbose", false, "Log debug output and show tool output")
	rootCmd.SetGlobalNormalizationFunc(underscoreToDash)
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	// Add subcommands
	rootCmd.AddCommand(NewNewCommand(app))
	rootCmd.AddCommand(NewRunCommand(app))
	rootCmd.AddCommand(NewExploreCommand(app))
	rootCmd.AddCommand(NewRenameCommand(app))
	rootCmd.AddCommand(NewDeleteCommand(app))
	rootCmd.AddCommand(NewFormatCommand(app))
	rootCmd.AddCommand(NewBuildCommand(app))
	rootCmd.AddCommand(NewInfoCommand(app))
	rootCmd.AddCommand(NewListCommand(app))
	rootCmd.AddCommand(NewCloneCommand(app))

	return rootCmd
}

// underscoreToDash accepts --project_version for --project-version.
func underscoreToDash(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(NewApp())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
