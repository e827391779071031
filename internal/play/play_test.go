package play

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pygame-manager/pgm/internal/config"
	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
)

const projectPath = "/data/pygame/demo"

func setup(t *testing.T, delay time.Duration) (*filesystem.MockFileSystem, *runner.MockRunner, *Player) {
	t.Helper()
	fs := filesystem.NewMockFileSystem()
	env := pyenv.NewMockEnvironment(fs)
	run := runner.NewMockRunner()

	fs.AddFile(filepath.Join(projectPath, models.MetadataFile), []byte(`{"name": "demo"}`))
	fs.AddFile(filepath.Join(projectPath, models.ManifestFile), []byte("pygame-ce\n"))
	fs.AddFile(filepath.Join(projectPath, "main.py"), []byte("print('hi')\n"))
	fs.AddDir(filepath.Join(projectPath, models.GitDir))
	require.NoError(t, env.Create(context.Background(), filepath.Join(projectPath, models.EnvDir), true))

	web := config.Default().Web
	web.OpenDelay = delay

	p := New(store.New(fs, "/data/pygame"), env, run, web, nil)
	p.goos = "linux"
	return fs, run, p
}

func TestLocal_StreamsOutput(t *testing.T) {
	_, run, p := setup(t, 0)
	run.On("-u main.py", func(_ context.Context, cmd runner.Command) error {
		cmd.Stdout.Write([]byte("loading\nready"))
		cmd.Stdout.Write([]byte("\r\nscore: 10\npartial"))
		return nil
	})

	var lines []string
	err := p.Local(context.Background(), "demo", func(_ time.Duration, line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"loading", "ready", "score: 10", "partial"}, lines)

	calls := run.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, []string{"-m", "pip", "install", "-r", filepath.Join(projectPath, models.ManifestFile)}, calls[0].Args)
	require.Equal(t, filepath.Join(projectPath, ".env", "bin", "python"), calls[1].Name)
	require.Equal(t, projectPath, calls[1].Dir)
}

func TestLocal_Crash(t *testing.T) {
	_, run, p := setup(t, 0)
	run.Fail("-u main.py", 1, "Traceback (most recent call last):\n  File \"/data/pygame/demo/main.py\", line 3, in <module>\nZeroDivisionError: division by zero\n")

	err := p.Local(context.Background(), "demo", nil)
	var exitErr *runner.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Contains(t, exitErr.Stderr, "ZeroDivisionError")
}

func TestLocal_InstallFailureStops(t *testing.T) {
	_, run, p := setup(t, 0)
	run.Fail("pip install", 1, "no network")

	err := p.Local(context.Background(), "demo", nil)
	require.ErrorContains(t, err, "failed to install requirements")
	require.False(t, run.Ran("-u main.py"))
}

func TestLocal_NotFound(t *testing.T) {
	_, _, p := setup(t, 0)
	err := p.Local(context.Background(), "ghost", nil)
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func TestWeb_OpensBrowser(t *testing.T) {
	_, run, p := setup(t, 0)

	opened := make(chan string, 1)
	run.On("xdg-open", func(_ context.Context, cmd runner.Command) error {
		opened <- cmd.Args[0]
		return nil
	})
	run.On("-m pygbag", func(ctx context.Context, cmd runner.Command) error {
		select {
		case <-opened:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("browser was never opened")
		}
	})

	var ready string
	err := p.Web(context.Background(), "demo", WebOptions{CDN: "https://cdn.example/", Ready: func(url string) { ready = url }})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/", ready)
	require.True(t, run.Ran("-m pygbag --cdn https://cdn.example/ main.py"))
}

func TestWeb_CancelRemovesBuildAndSkipsBrowser(t *testing.T) {
	fs, run, p := setup(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	run.On("-m pygbag", func(_ context.Context, cmd runner.Command) error {
		fs.AddFile(filepath.Join(cmd.Dir, "build", "web", "index.html"), nil)
		cancel()
		return errors.New("interrupted: context canceled")
	})

	err := p.Web(ctx, "demo", WebOptions{})
	require.True(t, errors.Is(err, context.Canceled))
	require.False(t, fs.Exists(filepath.Join(projectPath, "build")))
	require.False(t, run.Ran("xdg-open"))
}

func TestWeb_ServerFailure(t *testing.T) {
	_, run, p := setup(t, time.Hour)
	run.Fail("-m pygbag", 2, "pygbag: bad template")

	err := p.Web(context.Background(), "demo", WebOptions{Template: "bad.tmpl"})
	require.ErrorContains(t, err, "pygbag failed")
	require.False(t, run.Ran("xdg-open"))
}

func TestExplore(t *testing.T) {
	_, run, p := setup(t, 0)

	path, err := p.Explore(context.Background(), "demo")
	require.NoError(t, err)
	require.Equal(t, projectPath, path)
	require.True(t, run.Ran("xdg-open "+projectPath))
}

func TestOpenCommand(t *testing.T) {
	require.Equal(t, "explorer", OpenCommand("windows", "C:\\p").Name)
	require.Equal(t, "open", OpenCommand("darwin", "/p").Name)
	require.Equal(t, "xdg-open", OpenCommand("linux", "/p").Name)
}
