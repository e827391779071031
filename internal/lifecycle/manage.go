package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pygame-manager/pgm/internal/github"
	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/store"
)

// Rename renames project oldName to newName and returns the new path.
// The metadata name is rewritten before the directory is moved; if the
// move fails a *RenameMoveError is returned.
func (l *Lifecycle) Rename(ctx context.Context, oldName, newName string) (string, error) {
	oldPath, err := l.store.Require(oldName)
	if err != nil {
		return "", err
	}

	newPath, err := l.store.PathFor(newName)
	if err != nil {
		return "", err
	}
	state, err := l.store.State(newName)
	if err != nil {
		return "", err
	}
	if state.Exists() {
		return "", models.AlreadyExists(newName)
	}

	metaPath := store.MetadataPath(oldPath)
	data, err := l.fs.ReadFile(metaPath)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata: %w", err)
	}
	updated, err := models.SetMetadataName(data, newName)
	if err != nil {
		return "", err
	}
	if err := l.fs.WriteFile(metaPath, updated, 0644); err != nil {
		return "", &models.FilesystemError{Op: "write", Path: metaPath, Err: err}
	}

	if err := l.fs.Rename(oldPath, newPath); err != nil {
		return "", &RenameMoveError{Old: oldName, New: newName, Err: err}
	}

	l.logger.Info("project renamed", "from", oldName, "to", newName)
	return newPath, nil
}

// DeleteOptions controls Delete.
type DeleteOptions struct {
	// Force skips confirmation and the countdown.
	Force bool

	Confirmer Confirmer
}

// Delete removes a project and returns the path it occupied. Without
// Force the Confirmer must approve; declining returns ErrCancelled and
// leaves the project untouched.
func (l *Lifecycle) Delete(ctx context.Context, name string, opts DeleteOptions) (string, error) {
	path, err := l.store.Require(name)
	if err != nil {
		return "", err
	}

	if !opts.Force {
		if opts.Confirmer == nil {
			return "", cancelled(nil)
		}
		ok, err := opts.Confirmer.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete project '%s'?", name))
		if err != nil || !ok {
			return "", cancelled(err)
		}
		if err := opts.Confirmer.Countdown(ctx, l.countdown, fmt.Sprintf("Deleting '%s'", name)); err != nil {
			return "", cancelled(err)
		}
	}

	if err := l.fs.RemoveAll(path); err != nil {
		return "", &models.FilesystemError{Op: "delete", Path: path, Err: err}
	}

	l.logger.Info("project deleted", "name", name)
	return path, nil
}

// FormatOptions controls Format.
type FormatOptions struct {
	Force     bool
	Confirmer Confirmer
}

// Format removes the whole projects root. Without Force the user must
// type back a random four digit code.
func (l *Lifecycle) Format(ctx context.Context, opts FormatOptions) (string, error) {
	root, err := l.store.Root()
	if err != nil {
		return "", err
	}

	if !opts.Force {
		if opts.Confirmer == nil {
			return "", cancelled(nil)
		}
		ok, err := opts.Confirmer.ConfirmCode(ctx, l.newCode())
		if err != nil || !ok {
			return "", cancelled(err)
		}
	}

	if err := l.fs.RemoveAll(root); err != nil {
		return "", &models.FilesystemError{Op: "delete", Path: root, Err: err}
	}

	l.logger.Info("projects root formatted", "root", root)
	return root, nil
}

// CloneOptions controls Clone.
type CloneOptions struct {
	// Name overrides the project name derived from the source.
	Name string
}

// CloneName derives a project name from a clone source: the last path
// segment without a trailing ".git".
func CloneName(source string) string {
	source = strings.TrimRight(strings.TrimSpace(source), "/")
	if i := strings.LastIndexAny(source, "/:"); i >= 0 {
		source = source[i+1:]
	}
	return strings.TrimSuffix(source, ".git")
}

// Clone clones a repository as a new project and gives it an
// environment. A clone that does not turn out to be a valid project is
// removed and reported as ErrNotValidSource.
func (l *Lifecycle) Clone(ctx context.Context, source string, opts CloneOptions) (string, error) {
	name := opts.Name
	if name == "" {
		name = CloneName(source)
	}

	path, err := l.store.PathFor(name)
	if err != nil {
		return "", err
	}
	state, err := l.store.State(name)
	if err != nil {
		return "", err
	}
	if state.Exists() {
		return "", models.AlreadyExists(name)
	}

	url := source
	if l.github != nil {
		if url, err = github.ResolveCloneURL(ctx, l.github, source); err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", source, err)
		}
	}

	if _, err := l.store.Root(); err != nil {
		return "", err
	}

	l.logger.Info("cloning project", "source", url, "path", path)
	if err := l.git.Clone(ctx, url, path); err != nil {
		l.discard(path)
		return "", fmt.Errorf("failed to clone %s: %w", url, err)
	}

	if err := l.env.Create(ctx, store.EnvPath(path), true); err != nil {
		l.discard(path)
		return "", fmt.Errorf("failed to create environment: %w", err)
	}

	if store.StateAt(l.fs, path) != models.ProjectValid {
		l.discard(path)
		return "", &models.ProjectError{Name: name, Err: models.ErrNotValidSource}
	}
	return filepath.Clean(path), nil
}

// Info returns the metadata of a project.
func (l *Lifecycle) Info(name string) (*models.ProjectMetadata, error) {
	path, err := l.store.Require(name)
	if err != nil {
		return nil, err
	}
	return l.store.ReadMetadata(path)
}

// List returns the names of all valid projects.
func (l *Lifecycle) List() ([]string, error) {
	return l.store.List()
}

// Path returns where the named project lives, whether or not it exists.
func (l *Lifecycle) Path(name string) (string, error) {
	return l.store.PathFor(name)
}
