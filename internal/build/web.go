package build

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pygame-manager/pgm/internal/manifest"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
)

const webSteps = 5

// PygbagArgs returns the pygbag arguments shared by web builds and web
// runs. archive selects a packaged build instead of the dev server.
func PygbagArgs(archive bool, cdn, template string) []string {
	args := []string{"-m", "pygbag"}
	if archive {
		args = append(args, "--archive")
	}
	if cdn != "" {
		args = append(args, "--cdn", cdn)
	}
	if template != "" {
		args = append(args, "--template", template)
	}
	return append(args, mainScript)
}

// Web packages a project for the browser with pygbag. pygbag writes into
// <project>/build, which is then moved to the output directory.
func (p *Pipeline) Web(ctx context.Context, req Request) (*Result, error) {
	started := p.now()

	projectPath, output, err := p.prepare(req)
	if err != nil {
		return nil, err
	}

	buildID, err := p.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate build id: %w", err)
	}

	r := newRun(webSteps, req.Reporter)
	log := p.logger.With("project", req.Name, "build", buildID)
	log.Debug("web build", "output", output)

	result := &Result{Output: output, BuildID: buildID}
	bundle := filepath.Join(projectPath, webBuildDir)

	r.step("Cleaning output")
	if err := p.clean(output); err != nil {
		return nil, r.fail(err)
	}

	r.step("Running pygbag")
	stdout := req.ToolOutput
	if stdout == nil {
		stdout = io.Discard
	}
	cmd := runner.Command{
		Name:   p.env.Interpreter(store.EnvPath(projectPath)),
		Args:   PygbagArgs(true, req.CDN, req.Template),
		Dir:    projectPath,
		Stdout: stdout,
	}
	log.Debug("running packager", "cmd", cmd.String())
	if err := p.runner.Run(ctx, cmd); err != nil {
		p.removeBundle(bundle)
		return nil, r.fail(err)
	}

	r.step("Moving build files")
	if !p.fs.Exists(bundle) {
		return nil, r.fail(fmt.Errorf("pygbag produced no %s directory", webBuildDir))
	}
	if err := p.fs.MkdirAll(filepath.Dir(output), 0755); err != nil {
		p.removeBundle(bundle)
		return nil, r.fail(&models.FilesystemError{Op: "create", Path: filepath.Dir(output), Err: err})
	}
	if err := p.fs.Rename(bundle, output); err != nil {
		p.removeBundle(bundle)
		return nil, r.fail(&models.FilesystemError{Op: "move", Path: bundle, Err: err})
	}

	r.step("Collecting licenses")
	names, err := manifest.ReadFile(p.fs, store.ManifestPath(projectPath))
	if err != nil {
		return nil, r.fail(err)
	}
	result.Licenses, err = p.collectLicenses(ctx, r, projectPath, output, names)
	if err != nil {
		return nil, r.fail(err)
	}

	r.step("Finalizing")
	if err := p.finish(req, result, started); err != nil {
		return nil, r.fail(err)
	}
	log.Debug("web build finished", "elapsed", result.Elapsed)
	return result, nil
}

// removeBundle deletes pygbag leftovers inside the project.
func (p *Pipeline) removeBundle(bundle string) {
	if err := p.fs.RemoveAll(bundle); err != nil {
		p.logger.Warn("failed to remove web build leftovers", "path", bundle, "error", err)
	}
}
