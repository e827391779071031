package git

import (
	"context"
)

// GitClient provides an abstraction over git operations for testability
//
// Every operation names the repository directory explicitly; the client
// never relies on the process working directory.
type GitClient interface {
	// Init creates an empty repository in dir.
	Init(ctx context.Context, dir string) error

	// Clone clones url into dir, which must not exist yet.
	Clone(ctx context.Context, url, dir string) error

	// CommitAll stages every file in dir and commits it with message.
	CommitAll(ctx context.Context, dir, message string) error

	// RenameBranch renames the current branch of dir to name.
	RenameBranch(ctx context.Context, dir, name string) error
}
