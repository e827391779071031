package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OSGitClient implements GitClient using real git commands
type OSGitClient struct {
	binary string
}

// NewOSGitClient creates a new OSGitClient
func NewOSGitClient() *OSGitClient {
	return &OSGitClient{binary: "git"}
}

// Init initializes a repository
func (g *OSGitClient) Init(ctx context.Context, dir string) error {
	if err := g.run(ctx, "", "init", "--quiet", dir); err != nil {
		return fmt.Errorf("failed to init repository in %s: %w", dir, err)
	}
	return nil
}

// Clone clones a remote repository
func (g *OSGitClient) Clone(ctx context.Context, url, dir string) error {
	if err := g.run(ctx, "", "clone", "--quiet", url, dir); err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

// CommitAll stages all files and commits them
func (g *OSGitClient) CommitAll(ctx context.Context, dir, message string) error {
	if err := g.run(ctx, dir, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	if err := g.run(ctx, dir, "commit", "--quiet", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// RenameBranch renames the current branch
func (g *OSGitClient) RenameBranch(ctx context.Context, dir, name string) error {
	if err := g.run(ctx, dir, "branch", "-M", name); err != nil {
		return fmt.Errorf("failed to rename branch to %s: %w", name, err)
	}
	return nil
}

// run executes git, prefixing "-C dir" when dir is set.
func (g *OSGitClient) run(ctx context.Context, dir string, args ...string) error {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, g.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
