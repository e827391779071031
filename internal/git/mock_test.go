package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pygame-manager/pgm/internal/filesystem"
)

func TestMockGitClient_InitCommitRename(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	client := NewMockGitClient(fs)
	ctx := context.Background()

	require.NoError(t, client.Init(ctx, "/p/demo"))
	require.True(t, filesystem.IsDir(fs, "/p/demo/.git"))

	require.Error(t, client.RenameBranch(ctx, "/p/demo", "main"), "no commits yet")

	require.NoError(t, client.CommitAll(ctx, "/p/demo", "init"))
	require.NoError(t, client.RenameBranch(ctx, "/p/demo", "main"))
	require.Equal(t, []string{"init"}, client.Commits("/p/demo"))
	require.Equal(t, "main", client.Branch("/p/demo"))
}

func TestMockGitClient_Clone(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	client := NewMockGitClient(fs)
	client.AddRemote("https://example.com/u/game.git", map[string]string{
		"requirements.txt": "pygame-ce\n",
		"src/main.py":      "",
	})
	ctx := context.Background()

	require.NoError(t, client.Clone(ctx, "https://example.com/u/game.git", "/p/game"))
	require.True(t, filesystem.IsFile(fs, "/p/game/src/main.py"))
	require.True(t, filesystem.IsDir(fs, "/p/game/.git"))

	require.Error(t, client.Clone(ctx, "https://example.com/u/game.git", "/p/game"))
	require.Error(t, client.Clone(ctx, "https://example.com/u/unknown.git", "/p/unknown"))
	require.False(t, fs.Exists("/p/unknown"))
}

func TestMockGitClient_ErrorHooks(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	client := NewMockGitClient(fs)
	client.CommitError = errTest

	require.NoError(t, client.Init(context.Background(), "/p/demo"))
	require.ErrorIs(t, client.CommitAll(context.Background(), "/p/demo", "init"), errTest)
}

var errTest = testError("injected")

type testError string

func (e testError) Error() string { return string(e) }
