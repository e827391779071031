// Package play runs projects from their isolated environment, either
// locally or through the pygbag development server.
package play

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pygame-manager/pgm/internal/build"
	"github.com/pygame-manager/pgm/internal/config"
	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
)

const mainScript = "main.py"

// Output receives one line of program output and the time since launch.
type Output func(elapsed time.Duration, line string)

// Player runs projects.
type Player struct {
	store  *store.Store
	fs     filesystem.FileSystem
	env    pyenv.Environment
	runner runner.Runner
	web    config.WebConfig
	logger *slog.Logger

	goos string
	now  func() time.Time
}

// New creates a Player.
func New(st *store.Store, env pyenv.Environment, run runner.Runner, web config.WebConfig, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Player{
		store:  st,
		fs:     st.FS(),
		env:    env,
		runner: run,
		web:    web,
		logger: logger,
		goos:   runtime.GOOS,
		now:    time.Now,
	}
}

// Local installs the project's requirements into its environment and
// runs main.py, streaming stdout lines to out. A crash returns the
// *runner.ExitError with the captured stderr.
func (p *Player) Local(ctx context.Context, name string, out Output) error {
	path, err := p.store.Require(name)
	if err != nil {
		return err
	}
	python := p.env.Interpreter(store.EnvPath(path))

	install := runner.Command{
		Name:   python,
		Args:   []string{"-m", "pip", "install", "-r", store.ManifestPath(path)},
		Dir:    path,
		Stdout: io.Discard,
	}
	p.logger.Debug("installing requirements", "cmd", install.String())
	if err := p.runner.Run(ctx, install); err != nil {
		return fmt.Errorf("failed to install requirements: %w", err)
	}

	start := p.now()
	lines := &lineWriter{emit: func(line string) {
		if out != nil {
			out(p.now().Sub(start), line)
		}
	}}
	defer lines.Flush()

	return p.runner.Run(ctx, runner.Command{
		Name:   python,
		Args:   []string{"-u", mainScript},
		Dir:    path,
		Stdout: lines,
	})
}

// WebOptions are passed through to pygbag.
type WebOptions struct {
	CDN      string
	Template string

	// Ready is called with the dev server URL once pygbag is launched.
	Ready func(url string)
}

// Web serves the project with pygbag and opens the browser after the
// configured delay. The server runs until ctx is cancelled, at which
// point the project's build directory is removed and ctx.Err() returned.
func (p *Player) Web(ctx context.Context, name string, opts WebOptions) error {
	path, err := p.store.Require(name)
	if err != nil {
		return err
	}
	if !filesystem.IsFile(p.fs, filepath.Join(path, mainScript)) {
		return fmt.Errorf("no %s found in project '%s'", mainScript, name)
	}

	runCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.openLater(runCtx, p.web.DevURL)
	}()
	defer func() {
		stop()
		wg.Wait()
	}()

	if opts.Ready != nil {
		opts.Ready(p.web.DevURL)
	}

	cmd := runner.Command{
		Name:   p.env.Interpreter(store.EnvPath(path)),
		Args:   build.PygbagArgs(false, opts.CDN, opts.Template),
		Dir:    path,
		Stdout: io.Discard,
	}
	p.logger.Debug("starting dev server", "cmd", cmd.String())
	err = p.runner.Run(runCtx, cmd)

	if ctx.Err() != nil {
		bundle := filepath.Join(path, "build")
		if rmErr := p.fs.RemoveAll(bundle); rmErr != nil {
			p.logger.Warn("failed to remove web build leftovers", "path", bundle, "error", rmErr)
		}
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("pygbag failed: %w", err)
	}
	return nil
}

// openLater opens url once the open delay has passed, unless ctx ends
// first.
func (p *Player) openLater(ctx context.Context, url string) {
	timer := time.NewTimer(p.web.OpenDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	if err := p.runner.Run(ctx, OpenCommand(p.goos, url)); err != nil {
		p.logger.Warn("failed to open browser", "url", url, "error", err)
	}
}

// Explore opens the project folder in the system file browser and
// returns its path.
func (p *Player) Explore(ctx context.Context, name string) (string, error) {
	path, err := p.store.Require(name)
	if err != nil {
		return "", err
	}
	if err := p.runner.Run(ctx, OpenCommand(p.goos, path)); err != nil {
		return "", fmt.Errorf("failed to open project '%s': %w", name, err)
	}
	return path, nil
}

// OpenCommand returns the platform command that opens a folder or URL
// with its default application.
func OpenCommand(goos, target string) runner.Command {
	switch goos {
	case "windows":
		return runner.Command{Name: "explorer", Args: []string{target}}
	case "darwin":
		return runner.Command{Name: "open", Args: []string{target}}
	default:
		return runner.Command{Name: "xdg-open", Args: []string{target}}
	}
}

// lineWriter splits written bytes into lines.
type lineWriter struct {
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush emits a trailing partial line.
func (w *lineWriter) Flush() {
	if w.buf.Len() > 0 {
		w.emit(strings.TrimRight(w.buf.String(), "\r\n"))
		w.buf.Reset()
	}
}
