package github

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu           sync.RWMutex
	repositories map[string]*Repository // key: "owner/repo"

	// Hooks for testing error scenarios
	GetRepositoryError error
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		repositories: make(map[string]*Repository),
	}
}

// SetupRepository adds a repository to the mock
func (m *MockClient) SetupRepository(owner, repo string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.repositories[key] = &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		CloneURL:      fmt.Sprintf("https://github.com/%s/%s.git", owner, repo),
		DefaultBranch: "main",
	}
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	repository, exists := m.repositories[key]
	if !exists {
		return nil, fmt.Errorf("repository %s not found", key)
	}
	return repository, nil
}
