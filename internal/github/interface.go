package github

import (
	"context"
)

// GitHubClient provides an abstraction over GitHub API operations
type GitHubClient interface {
	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	Description   string
	URL           string
	CloneURL      string
	DefaultBranch string
	Archived      bool
}
