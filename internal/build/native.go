package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/manifest"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
)

const nativeSteps = 6

// Native freezes a project into a standalone executable with cx_Freeze.
// The project must have been run at least once so that __pycache__
// exists.
func (p *Pipeline) Native(ctx context.Context, req Request) (*Result, error) {
	started := p.now()

	projectPath, output, err := p.prepare(req)
	if err != nil {
		return nil, err
	}

	buildID, err := p.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate build id: %w", err)
	}

	r := newRun(nativeSteps, req.Reporter)
	log := p.logger.With("project", req.Name, "build", buildID)
	log.Debug("native build", "output", output)

	desc := p.describe(req.Name, projectPath, output)
	desc.BuildID = buildID
	result := &Result{Output: output, BuildID: buildID, Executable: filepath.Join(output, desc.TargetName)}

	r.step("Cleaning output")
	if err := p.clean(output); err != nil {
		return nil, r.fail(err)
	}

	r.step("Inspecting project")
	if !filesystem.IsDir(p.fs, filepath.Join(projectPath, cacheDir)) {
		return nil, r.fail(&models.ProjectError{Name: req.Name, Err: models.ErrNeverRun})
	}

	layout, err := Discover(p.fs, projectPath)
	if err != nil {
		return nil, r.fail(err)
	}
	desc.Packages = layout.Packages
	desc.Modules = layout.Modules

	names, err := manifest.ReadFile(p.fs, store.ManifestPath(projectPath))
	if err != nil {
		return nil, r.fail(err)
	}
	desc.Dependencies = p.packagerDependencies(names)

	site, err := p.env.SitePackages(store.EnvPath(projectPath))
	if err != nil {
		return nil, r.fail(err)
	}
	desc.SitePackages = site

	r.reporter.Detail(fmt.Sprintf("%d packages, %d modules, %d dependencies", len(desc.Packages), len(desc.Modules), len(desc.Dependencies)))

	r.step("Running cx_Freeze")
	if err := p.freeze(ctx, desc, projectPath, req.ToolOutput); err != nil {
		return nil, r.fail(err)
	}

	r.step("Copying assets")
	copied, err := copyAssets(p.fs, projectPath, output, p.native.AssetDirs)
	if err != nil {
		return nil, r.fail(err)
	}
	if copied == 0 {
		log.Warn("no asset files copied", "dirs", p.native.AssetDirs)
	}
	r.reporter.Detail(fmt.Sprintf("Total files moved: %d", copied))

	r.step("Collecting licenses")
	licenseNames := manifest.Substitute(desc.Dependencies, p.native.PackagingDependency, p.native.FrameworkDependency)
	result.Licenses, err = p.collectLicenses(ctx, r, projectPath, output, licenseNames)
	if err != nil {
		return nil, r.fail(err)
	}
	p.moveFrozenLicense(output, log)

	r.step("Finalizing")
	if err := p.finish(req, result, started); err != nil {
		return nil, r.fail(err)
	}
	log.Debug("native build finished", "elapsed", result.Elapsed)
	return result, nil
}

// describe fills in the naming parts of the descriptor from metadata.
// Unreadable metadata falls back to the defaults.
func (p *Pipeline) describe(name, projectPath, output string) *Descriptor {
	appName, appVersion := defaultName, defaultVersion

	meta, err := p.store.ReadMetadata(projectPath)
	if err != nil {
		p.logger.Warn("using default build metadata", "project", name, "error", err)
	} else {
		if meta.Name != "" {
			appName = meta.Name
		}
		if meta.Version != "" {
			appVersion = meta.Version
		}
	}

	if store.ValidateName(appName) != nil {
		p.logger.Warn("metadata name is not a valid file name, using project name", "name", appName)
		appName = name
	}
	if _, err := models.ParseVersion(appVersion); err != nil {
		p.logger.Warn("metadata version is not semantic, using default", "version", appVersion)
		appVersion = defaultVersion
	}

	desc := &Descriptor{
		Name:        appName,
		Version:     appVersion,
		TargetName:  appName,
		MainScript:  filepath.Join(projectPath, mainScript),
		ProjectPath: projectPath,
		Output:      output,
	}
	if p.goos == "windows" {
		desc.TargetName += ".exe"
		desc.GUI = true
	}
	return desc
}

// packagerDependencies maps manifest names to what cx_Freeze should
// bundle: the framework is swapped for its packaging-compatible name and
// excluded dependencies are dropped.
func (p *Pipeline) packagerDependencies(names []string) []string {
	deps := manifest.Without(names, p.native.ExcludedDependencies...)
	return manifest.Substitute(deps, p.native.FrameworkDependency, p.native.PackagingDependency)
}

// freeze renders the descriptor into a scratch directory and runs it.
func (p *Pipeline) freeze(ctx context.Context, desc *Descriptor, projectPath string, stdout io.Writer) error {
	script, err := desc.Render()
	if err != nil {
		return err
	}

	tmp, err := p.fs.MkdirTemp("", "pgm-build-*")
	if err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	defer func() {
		if err := p.fs.RemoveAll(tmp); err != nil {
			p.logger.Warn("failed to remove build directory", "dir", tmp, "error", err)
		}
	}()

	if err := p.fs.WriteFile(filepath.Join(tmp, DescriptorFile), script, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DescriptorFile, err)
	}

	python := p.native.Python
	if python == "" {
		python = p.env.Interpreter(store.EnvPath(projectPath))
	}
	if stdout == nil {
		stdout = io.Discard
	}

	cmd := runner.Command{
		Name:   python,
		Args:   []string{DescriptorFile, "build"},
		Dir:    tmp,
		Env:    map[string]string{"PYTHONPATH": desc.SitePackages},
		Stdout: stdout,
	}
	p.logger.Debug("running packager", "cmd", cmd.String(), "dir", tmp)
	return p.runner.Run(ctx, cmd)
}

// moveFrozenLicense files cx_Freeze's own notice with the others.
func (p *Pipeline) moveFrozenLicense(output string, log *slog.Logger) {
	src := filepath.Join(output, FrozenLicenseFile)
	if !p.fs.Exists(src) {
		log.Warn("packager license notice not found", "path", src)
		return
	}
	if err := p.fs.Rename(src, filepath.Join(output, LicensesDir, FrozenLicenseFile)); err != nil {
		log.Warn("failed to move packager license notice", "error", err)
	}
}
