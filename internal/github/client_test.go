package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_GetRepository(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/space-game":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"name": "space-game",
				"full_name": "octo/space-game",
				"owner": {"login": "octo"},
				"description": "pew pew",
				"html_url": "https://github.com/octo/space-game",
				"clone_url": "https://github.com/octo/space-game.git",
				"default_branch": "main"
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
		}
	}))
	defer server.Close()

	client, err := newClientWithBaseURL(server.Client(), server.URL)
	require.NoError(t, err)

	repo, err := client.GetRepository(context.Background(), "octo", "space-game")
	require.NoError(t, err)
	require.Equal(t, "octo", repo.Owner)
	require.Equal(t, "https://github.com/octo/space-game.git", repo.CloneURL)
	require.Equal(t, "pew pew", repo.Description)

	_, err = client.GetRepository(context.Background(), "octo", "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to get repository octo/missing")
}

func TestParseShorthand(t *testing.T) {
	tests := []struct {
		source string
		owner  string
		repo   string
		ok     bool
	}{
		{"octo/space-game", "octo", "space-game", true},
		{"octo/space.game", "octo", "space.game", true},
		{"https://github.com/octo/space-game.git", "", "", false},
		{"git@github.com:octo/space-game.git", "", "", false},
		{"./local/repo", "", "", false},
		{"/abs/repo", "", "", false},
		{"octo/..", "", "", false},
		{"octo", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			owner, repo, ok := ParseShorthand(tt.source)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.owner, owner)
			require.Equal(t, tt.repo, repo)
		})
	}
}

func TestResolveCloneURL(t *testing.T) {
	mock := NewMockClient()
	mock.SetupRepository("octo", "space-game")
	ctx := context.Background()

	url, err := ResolveCloneURL(ctx, mock, "octo/space-game")
	require.NoError(t, err)
	require.Equal(t, "https://github.com/octo/space-game.git", url)

	url, err = ResolveCloneURL(ctx, mock, "https://gitlab.com/a/b.git")
	require.NoError(t, err)
	require.Equal(t, "https://gitlab.com/a/b.git", url)

	_, err = ResolveCloneURL(ctx, mock, "octo/unknown")
	require.Error(t, err)
}
