// Package lifecycle creates, renames, deletes and clones projects.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/git"
	"github.com/pygame-manager/pgm/internal/github"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/store"
	"github.com/pygame-manager/pgm/internal/template"
)

const (
	initialCommit = "init"
	defaultBranch = "main"
)

// Prompter asks for a value interactively. A blank answer keeps def.
type Prompter interface {
	Prompt(ctx context.Context, label, def string) (string, error)
}

// Confirmer guards destructive operations.
type Confirmer interface {
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
	// ConfirmCode asks the user to type code back.
	ConfirmCode(ctx context.Context, code string) (bool, error)
	// Countdown waits d while giving the user a chance to abort.
	Countdown(ctx context.Context, d time.Duration, label string) error
}

// RenameMoveError reports a rename whose metadata was already rewritten
// to the new name when moving the directory failed.
type RenameMoveError struct {
	Old string
	New string
	Err error
}

func (e *RenameMoveError) Error() string {
	return fmt.Sprintf("failed to move project '%s' to '%s' (metadata already names it '%s'): %v", e.Old, e.New, e.New, e.Err)
}

func (e *RenameMoveError) Unwrap() error {
	return e.Err
}

// Lifecycle manages projects in a store.
type Lifecycle struct {
	store     *store.Store
	fs        filesystem.FileSystem
	env       pyenv.Environment
	git       git.GitClient
	github    github.GitHubClient
	template  template.Provider
	logger    *slog.Logger
	countdown time.Duration

	now         func() time.Time
	currentUser func() string
	newCode     func() string
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithCountdown sets the grace period before a confirmed delete.
func WithCountdown(d time.Duration) Option {
	return func(l *Lifecycle) {
		l.countdown = d
	}
}

// WithGitHub enables "owner/repo" clone sources.
func WithGitHub(client github.GitHubClient) Option {
	return func(l *Lifecycle) {
		l.github = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

// New creates a Lifecycle.
func New(st *store.Store, env pyenv.Environment, gitClient git.GitClient, tmpl template.Provider, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		store:       st,
		fs:          st.FS(),
		env:         env,
		git:         gitClient,
		template:    tmpl,
		logger:      slog.New(slog.DiscardHandler),
		countdown:   3 * time.Second,
		now:         time.Now,
		currentUser: currentUser,
		newCode: func() string {
			return fmt.Sprintf("%04d", 1000+rand.IntN(9000))
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

// cancelled wraps a confirmation failure as ErrCancelled.
func cancelled(err error) error {
	if err == nil {
		return models.ErrCancelled
	}
	return fmt.Errorf("%w: %w", models.ErrCancelled, err)
}

// discard removes a partially created project directory.
func (l *Lifecycle) discard(path string) {
	if err := l.fs.RemoveAll(path); err != nil {
		l.logger.Error("failed to remove partial project", "path", path, "error", err)
	}
}
