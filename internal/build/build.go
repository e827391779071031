// Package build turns a project into a native executable (cx_Freeze) or a
// browser bundle (pygbag) and gathers license notices for what it ships.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pygame-manager/pgm/internal/archive"
	"github.com/pygame-manager/pgm/internal/config"
	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/license"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
)

const (
	// LicensesDir is created inside every build output.
	LicensesDir = "licenses"

	// FrozenLicenseFile is the notice cx_Freeze drops into its output.
	FrozenLicenseFile = "frozen_application_license.txt"

	defaultOutput  = "build"
	defaultName    = "Game"
	defaultVersion = "1.0.0"

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 10
)

// Reporter receives user-facing progress.
type Reporter interface {
	// Step announces step n of total.
	Step(n, total int, title string)
	// Detail reports a line of progress within the current step.
	Detail(msg string)
}

// NopReporter discards progress.
type NopReporter struct{}

func (NopReporter) Step(int, int, string) {}
func (NopReporter) Detail(string)         {}

// Request describes one build.
type Request struct {
	Name string
	Web  bool

	// Output is the build directory. Relative paths resolve against the
	// working directory; empty means ./build.
	Output string

	// CDN and Template are passed through to pygbag.
	CDN      string
	Template string

	// Archive additionally packs the output into a .tar.zst with a
	// BLAKE3 checksum file.
	Archive bool

	Reporter Reporter

	// ToolOutput receives the packager's stdout. Nil discards it.
	ToolOutput io.Writer
}

// Result describes a finished build.
type Result struct {
	Output     string
	Executable string
	BuildID    string
	Elapsed    time.Duration
	Licenses   license.Result
	Archive    *archive.Result
}

// StepError reports the numbered step a build stopped at.
type StepError struct {
	Step  int
	Total int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("build failed at step %d/%d (%s): %v", e.Step, e.Total, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs builds for projects in a store.
type Pipeline struct {
	store    *store.Store
	fs       filesystem.FileSystem
	env      pyenv.Environment
	runner   runner.Runner
	licenses *license.Collector
	native   config.NativeConfig
	logger   *slog.Logger

	goos  string
	now   func() time.Time
	newID func() (string, error)
}

// NewPipeline creates a Pipeline.
func NewPipeline(st *store.Store, env pyenv.Environment, run runner.Runner, licenses *license.Collector, native config.NativeConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		store:    st,
		fs:       st.FS(),
		env:      env,
		runner:   run,
		licenses: licenses,
		native:   native,
		logger:   logger,
		goos:     runtime.GOOS,
		now:      time.Now,
		newID: func() (string, error) {
			return gonanoid.Generate(idAlphabet, idLength)
		},
	}
}

// Build dispatches to Native or Web.
func (p *Pipeline) Build(ctx context.Context, req Request) (*Result, error) {
	if req.Web {
		return p.Web(ctx, req)
	}
	return p.Native(ctx, req)
}

// run tracks the numbered steps of one build.
type run struct {
	total    int
	current  int
	name     string
	reporter Reporter
}

func newRun(total int, reporter Reporter) *run {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &run{total: total, reporter: reporter}
}

func (r *run) step(name string) {
	r.current++
	r.name = name
	r.reporter.Step(r.current, r.total, name)
}

func (r *run) fail(err error) error {
	return &StepError{Step: r.current, Total: r.total, Name: r.name, Err: err}
}

// prepare validates the project and resolves the output directory.
func (p *Pipeline) prepare(req Request) (projectPath, output string, err error) {
	projectPath, err = p.store.Require(req.Name)
	if err != nil {
		return "", "", err
	}

	output, err = p.outputPath(req.Output)
	if err != nil {
		return "", "", err
	}
	if overlaps(output, projectPath) {
		return "", "", fmt.Errorf("output directory %s overlaps project %s", output, projectPath)
	}
	if root, err := p.store.Root(); err == nil && within(root, output) {
		return "", "", fmt.Errorf("output directory %s is inside the projects root", output)
	}
	return projectPath, output, nil
}

func (p *Pipeline) outputPath(out string) (string, error) {
	if out == "" {
		out = defaultOutput
	}
	if filepath.IsAbs(out) {
		return filepath.Clean(out), nil
	}
	wd, err := p.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, out), nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

// clean removes a previous build.
func (p *Pipeline) clean(output string) error {
	if err := p.fs.RemoveAll(output); err != nil {
		return fmt.Errorf("failed to remove previous build: %w", err)
	}
	return nil
}

// collectLicenses writes notices for names into <output>/licenses.
func (p *Pipeline) collectLicenses(ctx context.Context, r *run, projectPath, output string, names []string) (license.Result, error) {
	dir := filepath.Join(output, LicensesDir)
	res, err := p.licenses.Collect(ctx, store.EnvPath(projectPath), names, dir)
	if err != nil {
		return res, err
	}
	r.reporter.Detail(fmt.Sprintf("Wrote %d of %d license notices to %s", res.Written, len(names), dir))
	for _, f := range res.Failures {
		r.reporter.Detail(fmt.Sprintf("! No license notice for %s (%s): %v", f.Package, f.Version, f.Err))
	}
	return res, nil
}

// finish writes the optional archive and stamps the elapsed time.
func (p *Pipeline) finish(req Request, result *Result, started time.Time) error {
	if req.Archive {
		arch, err := archive.Create(p.fs, result.Output)
		if err != nil {
			return err
		}
		result.Archive = arch
	}
	result.Elapsed = p.now().Sub(started)
	return nil
}
