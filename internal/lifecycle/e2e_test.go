package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pygame-manager/pgm/internal/build"
	"github.com/pygame-manager/pgm/internal/config"
	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/git"
	"github.com/pygame-manager/pgm/internal/license"
	"github.com/pygame-manager/pgm/internal/lifecycle"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/registry"
	"github.com/pygame-manager/pgm/internal/runner"
	"github.com/pygame-manager/pgm/internal/store"
	"github.com/pygame-manager/pgm/internal/template"
)

func TestCreateRenameBuildNeverRun(t *testing.T) {
	ctx := context.Background()
	fs := filesystem.NewMockFileSystem()
	env := pyenv.NewMockEnvironment(fs)
	run := runner.NewMockRunner()
	st := store.New(fs, "/data/pygame")

	lc := lifecycle.New(st, env, git.NewMockGitClient(fs), template.NewEmbedded(fs))

	_, err := lc.Create(ctx, lifecycle.CreateOptions{Name: "demo"})
	require.NoError(t, err)

	_, err = lc.Rename(ctx, "demo", "demo2")
	require.NoError(t, err)

	collector := license.NewCollector(fs, env, registry.New("http://127.0.0.1:1"), nil)
	pipeline := build.NewPipeline(st, env, run, collector, config.Default().Native, nil)

	_, err = pipeline.Build(ctx, build.Request{Name: "demo2"})
	require.True(t, errors.Is(err, models.ErrNeverRun))
	require.False(t, run.Ran(build.DescriptorFile))
	require.Empty(t, run.Calls())
}
