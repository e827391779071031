package git

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/models"
)

// MockGitClient implements GitClient on top of a MockFileSystem. Init and
// Clone materialize a .git directory; registered remotes are copied in
// by Clone.
type MockGitClient struct {
	mu      sync.Mutex
	fs      *filesystem.MockFileSystem
	remotes map[string]map[string]string // url -> relative path -> content
	commits map[string][]string          // dir -> commit messages
	branch  map[string]string            // dir -> branch name

	// Hooks for testing error scenarios
	InitError         error
	CloneError        error
	CommitError       error
	RenameBranchError error
}

// NewMockGitClient creates a new MockGitClient
func NewMockGitClient(fs *filesystem.MockFileSystem) *MockGitClient {
	return &MockGitClient{
		fs:      fs,
		remotes: make(map[string]map[string]string),
		commits: make(map[string][]string),
		branch:  make(map[string]string),
	}
}

// AddRemote registers the file tree a clone of url produces.
func (m *MockGitClient) AddRemote(url string, files map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remotes[url] = files
}

func (m *MockGitClient) Init(ctx context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InitError != nil {
		return m.InitError
	}
	m.fs.AddDir(filepath.Join(dir, models.GitDir))
	m.branch[filepath.Clean(dir)] = "master"
	return nil
}

func (m *MockGitClient) Clone(ctx context.Context, url, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CloneError != nil {
		return m.CloneError
	}
	files, ok := m.remotes[url]
	if !ok {
		return fmt.Errorf("failed to clone %s: repository not found", url)
	}
	if m.fs.Exists(dir) {
		return fmt.Errorf("failed to clone %s: destination path %s already exists", url, dir)
	}

	m.fs.AddDir(filepath.Join(dir, models.GitDir))
	for rel, content := range files {
		m.fs.AddFile(filepath.Join(dir, filepath.FromSlash(rel)), []byte(content))
	}
	m.branch[filepath.Clean(dir)] = "main"
	return nil
}

func (m *MockGitClient) CommitAll(ctx context.Context, dir, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CommitError != nil {
		return m.CommitError
	}
	if !m.fs.Exists(filepath.Join(dir, models.GitDir)) {
		return fmt.Errorf("failed to commit: %s is not a git repository", dir)
	}
	key := filepath.Clean(dir)
	m.commits[key] = append(m.commits[key], message)
	return nil
}

func (m *MockGitClient) RenameBranch(ctx context.Context, dir, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RenameBranchError != nil {
		return m.RenameBranchError
	}
	key := filepath.Clean(dir)
	if len(m.commits[key]) == 0 {
		return fmt.Errorf("failed to rename branch to %s: no commits yet", name)
	}
	m.branch[key] = name
	return nil
}

// Commits returns the commit messages recorded for dir.
func (m *MockGitClient) Commits(dir string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commits[filepath.Clean(dir)]...)
}

// Branch returns the current branch recorded for dir.
func (m *MockGitClient) Branch(dir string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.branch[filepath.Clean(dir)]
}
