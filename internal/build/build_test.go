package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/pygame-manager/pgm/internal/archive"
	"github.com/pygame-manager/pgm/internal/config"
	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/license"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/registry"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
)

const (
	root        = "/data/pygame"
	projectPath = "/data/pygame/demo"
	envPath     = "/data/pygame/demo/.env"
	outputPath  = "/workspace/build"
)

type fakeIndex struct {
	missing map[string]bool
	queried []string
}

func (f *fakeIndex) Package(ctx context.Context, name, version string) (*registry.Info, error) {
	f.queried = append(f.queried, name)
	if f.missing[name] {
		return nil, &registry.HTTPError{StatusCode: 404, URL: "https://pypi.org/pypi/" + name + "/json"}
	}
	return &registry.Info{Name: name, Version: version, License: "MIT"}, nil
}

type recordingReporter struct {
	steps   []string
	details []string
}

func (r *recordingReporter) Step(n, total int, title string) {
	r.steps = append(r.steps, fmt.Sprintf("[%d/%d] %s", n, total, title))
}

func (r *recordingReporter) Detail(msg string) {
	r.details = append(r.details, msg)
}

type fixture struct {
	fs       *filesystem.MockFileSystem
	env      *pyenv.MockEnvironment
	runner   *runner.MockRunner
	index    *fakeIndex
	pipeline *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fs := filesystem.NewMockFileSystem()
	env := pyenv.NewMockEnvironment(fs)
	run := runner.NewMockRunner()
	index := &fakeIndex{missing: map[string]bool{}}

	meta := models.NewProjectMetadata("demo", "A demo", "tester", "0.2.0", models.Tags{}, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	data, err := meta.Encode()
	require.NoError(t, err)

	fs.AddFile(filepath.Join(projectPath, models.MetadataFile), data)
	fs.AddFile(filepath.Join(projectPath, models.ManifestFile), []byte("pygame-ce\npygbag\nnumpy>=1.26\n"))
	fs.AddDir(filepath.Join(projectPath, models.GitDir))
	fs.AddFile(filepath.Join(projectPath, "main.py"), []byte("import pygame\n"))
	require.NoError(t, env.Create(context.Background(), envPath, true))
	env.Install(envPath, "pygame-ce", "2.5.2")
	env.Install(envPath, "numpy", "1.26.4")

	cfg := config.Default().Native
	st := store.New(fs, root)
	collector := license.NewCollector(fs, env, index, nil)

	p := NewPipeline(st, env, run, collector, cfg, nil)
	p.goos = "linux"
	p.newID = func() (string, error) { return "testbuild1", nil }

	return &fixture{fs: fs, env: env, runner: run, index: index, pipeline: p}
}

// freezeInto makes the mocked packager write an executable and its
// license notice into the configured output.
func (f *fixture) freezeInto(t *testing.T, script *string) {
	f.runner.On("setup_cxfreeze.py build", func(_ context.Context, cmd runner.Command) error {
		data, err := f.fs.ReadFile(filepath.Join(cmd.Dir, DescriptorFile))
		require.NoError(t, err)
		if script != nil {
			*script = string(data)
		}
		f.fs.AddFile(filepath.Join(outputPath, "demo"), []byte("ELF"))
		f.fs.AddFile(filepath.Join(outputPath, FrozenLicenseFile), []byte("cx_Freeze license"))
		return nil
	})
}

func TestNative_BuildsProject(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir(filepath.Join(projectPath, "__pycache__"))
	f.fs.AddFile(filepath.Join(projectPath, "engine", "__init__.py"), nil)
	f.fs.AddFile(filepath.Join(projectPath, "util.py"), nil)
	f.fs.AddFile(filepath.Join(projectPath, "Assets", "hero.png"), []byte("png"))
	f.fs.AddFile(filepath.Join(projectPath, "data", "level1.txt"), []byte("###"))
	f.fs.AddFile(filepath.Join(outputPath, "stale.txt"), []byte("old"))

	var script string
	f.freezeInto(t, &script)

	reporter := &recordingReporter{}
	result, err := f.pipeline.Native(context.Background(), Request{Name: "demo", Reporter: reporter})
	require.NoError(t, err)

	require.Equal(t, outputPath, result.Output)
	require.Equal(t, filepath.Join(outputPath, "demo"), result.Executable)
	require.Equal(t, "testbuild1", result.BuildID)
	require.Equal(t, 2, result.Licenses.Written)
	require.Empty(t, result.Licenses.Failures)

	require.Equal(t, []string{
		"[1/6] Cleaning output",
		"[2/6] Inspecting project",
		"[3/6] Running cx_Freeze",
		"[4/6] Copying assets",
		"[5/6] Collecting licenses",
		"[6/6] Finalizing",
	}, reporter.steps)
	require.Contains(t, reporter.details, "Total files moved: 2")

	require.False(t, f.fs.Exists(filepath.Join(outputPath, "stale.txt")))
	require.True(t, f.fs.Exists(filepath.Join(outputPath, "Assets", "hero.png")))
	require.True(t, f.fs.Exists(filepath.Join(outputPath, "data", "level1.txt")))
	require.True(t, f.fs.Exists(filepath.Join(outputPath, LicensesDir, "pygame-ce_2.5.2_LICENSE.txt")))
	require.True(t, f.fs.Exists(filepath.Join(outputPath, LicensesDir, "numpy_1.26.4_LICENSE.txt")))
	require.True(t, f.fs.Exists(filepath.Join(outputPath, LicensesDir, license.ReadmeFile)))
	require.True(t, f.fs.Exists(filepath.Join(outputPath, LicensesDir, FrozenLicenseFile)))
	require.False(t, f.fs.Exists(filepath.Join(outputPath, FrozenLicenseFile)))

	calls := f.runner.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, filepath.Join(envPath, "bin", "python"), calls[0].Name)
	require.Equal(t, []string{DescriptorFile, "build"}, calls[0].Args)
	require.Equal(t, filepath.Join(envPath, "lib", pyenv.MockPythonVersion, "site-packages"), calls[0].Env["PYTHONPATH"])
	require.False(t, f.fs.Exists(calls[0].Dir), "scratch directory should be removed")

	require.Contains(t, script, `packages = ["engine"]`)
	require.Contains(t, script, `modules = ["util"]`)
	require.Contains(t, script, `external_packages = ["pygame", "numpy"]`)
	snaps.MatchSnapshot(t, script)
}

func TestNative_NeverRunStopsBeforePackager(t *testing.T) {
	f := newFixture(t)
	f.freezeInto(t, nil)

	_, err := f.pipeline.Native(context.Background(), Request{Name: "demo"})
	require.Error(t, err)
	require.True(t, errors.Is(err, models.ErrNeverRun))

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	require.Equal(t, 2, stepErr.Step)
	require.Equal(t, nativeSteps, stepErr.Total)
	require.False(t, f.runner.Ran("setup_cxfreeze.py"))
}

func TestNative_UnknownProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.Native(context.Background(), Request{Name: "nope"})
	require.True(t, errors.Is(err, models.ErrNotFound))
	require.Empty(t, f.runner.Calls())
}

func TestNative_PackagerFailure(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir(filepath.Join(projectPath, "__pycache__"))
	f.runner.Fail("setup_cxfreeze.py build", 1, "Traceback (most recent call last):\nImportError: cx_Freeze\n")

	_, err := f.pipeline.Native(context.Background(), Request{Name: "demo"})
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	require.Equal(t, 3, stepErr.Step)
	require.Equal(t, "Running cx_Freeze", stepErr.Name)

	var exitErr *runner.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, err.Error(), "ImportError: cx_Freeze")
}

func TestNative_MissingAssetsAndNoticeAreSoft(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir(filepath.Join(projectPath, "__pycache__"))
	f.runner.On("setup_cxfreeze.py build", func(context.Context, runner.Command) error {
		f.fs.AddFile(filepath.Join(outputPath, "demo"), []byte("ELF"))
		return nil
	})
	f.index.missing["numpy"] = true

	result, err := f.pipeline.Native(context.Background(), Request{Name: "demo"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Licenses.Written)
	require.Len(t, result.Licenses.Failures, 1)
	require.Equal(t, "numpy", result.Licenses.Failures[0].Package)
}

func TestNative_GitignoredCodeIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir(filepath.Join(projectPath, "__pycache__"))
	f.fs.AddFile(filepath.Join(projectPath, ".gitignore"), []byte("scratch.py\nvendor/\n"))
	f.fs.AddFile(filepath.Join(projectPath, "scratch.py"), nil)
	f.fs.AddFile(filepath.Join(projectPath, "vendor", "__init__.py"), nil)
	f.fs.AddFile(filepath.Join(projectPath, ".hidden", "__init__.py"), nil)
	f.fs.AddFile(filepath.Join(projectPath, "game", "__init__.py"), nil)
	f.fs.AddFile(filepath.Join(projectPath, "notes", "readme.md"), nil)

	layout, err := Discover(f.fs, projectPath)
	require.NoError(t, err)
	require.Equal(t, []string{"game"}, layout.Packages)
	require.Empty(t, layout.Modules)
}

func TestNative_WindowsTarget(t *testing.T) {
	f := newFixture(t)
	f.pipeline.goos = "windows"

	desc := f.pipeline.describe("demo", projectPath, outputPath)
	require.Equal(t, "demo.exe", desc.TargetName)
	require.True(t, desc.GUI)
	require.Equal(t, "0.2.0", desc.Version)
}

func TestNative_MetadataDefaults(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile(filepath.Join(projectPath, models.MetadataFile), []byte(`{"name": "", "version": "not-a-version"}`))

	desc := f.pipeline.describe("demo", projectPath, outputPath)
	require.Equal(t, "Game", desc.Name)
	require.Equal(t, "1.0.0", desc.Version)
}

func TestNative_Archive(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir(filepath.Join(projectPath, "__pycache__"))
	f.freezeInto(t, nil)

	result, err := f.pipeline.Native(context.Background(), Request{Name: "demo", Archive: true})
	require.NoError(t, err)
	require.NotNil(t, result.Archive)
	require.Equal(t, outputPath+archive.Extension, result.Archive.Path)

	data, err := f.fs.ReadFile(result.Archive.Path)
	require.NoError(t, err)
	require.True(t, archive.Verify(data, result.Archive.Digest))

	sum, err := f.fs.ReadFile(result.Archive.ChecksumPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(sum), result.Archive.Digest+"  build.tar.zst"))
}

func TestBuild_RejectsOutputOverlappingProject(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir(filepath.Join(projectPath, "__pycache__"))

	for _, out := range []string{projectPath, filepath.Join(projectPath, "dist"), "/data", root + "/other"} {
		_, err := f.pipeline.Build(context.Background(), Request{Name: "demo", Output: out})
		require.Error(t, err, out)
	}
	require.True(t, f.fs.Exists(projectPath))
	require.Empty(t, f.runner.Calls())
}

func TestWeb_BuildsBundle(t *testing.T) {
	f := newFixture(t)
	f.runner.On("-m pygbag", func(_ context.Context, cmd runner.Command) error {
		f.fs.AddFile(filepath.Join(cmd.Dir, "build", "web", "index.html"), []byte("<html>"))
		f.fs.AddFile(filepath.Join(cmd.Dir, "build", "web", "demo.apk"), []byte("apk"))
		return nil
	})

	reporter := &recordingReporter{}
	result, err := f.pipeline.Build(context.Background(), Request{
		Name:     "demo",
		Web:      true,
		Output:   "dist",
		CDN:      "https://cdn.example/",
		Reporter: reporter,
	})
	require.NoError(t, err)
	require.Equal(t, "/workspace/dist", result.Output)
	require.Len(t, reporter.steps, webSteps)

	calls := f.runner.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, projectPath, calls[0].Dir)
	require.Equal(t, []string{"-m", "pygbag", "--archive", "--cdn", "https://cdn.example/", "main.py"}, calls[0].Args)

	require.True(t, f.fs.Exists("/workspace/dist/web/index.html"))
	require.False(t, f.fs.Exists(filepath.Join(projectPath, "build")))

	// Web builds collect licenses for the full manifest.
	require.ElementsMatch(t, []string{"pygame-ce", "pygbag", "numpy"}, f.index.queried)
	require.Equal(t, 3, result.Licenses.Written)
}

func TestWeb_FailureRemovesLeftovers(t *testing.T) {
	f := newFixture(t)
	f.runner.On("-m pygbag", func(_ context.Context, cmd runner.Command) error {
		f.fs.AddFile(filepath.Join(cmd.Dir, "build", "partial"), nil)
		return &runner.ExitError{Tool: cmd.Name, Code: 2, Stderr: "pygbag: error"}
	})

	_, err := f.pipeline.Web(context.Background(), Request{Name: "demo"})
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	require.Equal(t, 2, stepErr.Step)
	require.False(t, f.fs.Exists(filepath.Join(projectPath, "build")))
}

func TestPygbagArgs(t *testing.T) {
	require.Equal(t, []string{"-m", "pygbag", "main.py"}, PygbagArgs(false, "", ""))
	require.Equal(t, []string{"-m", "pygbag", "--archive", "--template", "noctx.tmpl", "main.py"}, PygbagArgs(true, "", "noctx.tmpl"))
}
