package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/pygame-manager/pgm/internal/models"
	"github.com/pygame-manager/pgm/internal/store"
)

// CreateOptions describes a new project. Empty fields take defaults:
// the current OS user as author and version 0.0.0.
type CreateOptions struct {
	Name        string
	Description string
	Author      string
	Version     string
	Tags        []string

	// Prompter, when set, is asked to confirm or override author,
	// description, version and tags.
	Prompter Prompter
}

// Create makes a new project from the template and returns its path. Any
// failure after the directory exists removes it again.
func (l *Lifecycle) Create(ctx context.Context, opts CreateOptions) (string, error) {
	if _, err := l.store.PathFor(opts.Name); err != nil {
		return "", err
	}

	state, err := l.store.State(opts.Name)
	if err != nil {
		return "", err
	}
	if state.Exists() {
		return "", models.AlreadyExists(opts.Name)
	}

	meta, err := l.metadata(ctx, opts)
	if err != nil {
		return "", err
	}

	path, err := l.store.EnsurePath(opts.Name)
	if err != nil {
		return "", err
	}

	if err := l.populate(ctx, path, meta); err != nil {
		l.discard(path)
		return "", err
	}

	l.logger.Info("project created", "name", opts.Name, "path", path)
	return path, nil
}

func (l *Lifecycle) metadata(ctx context.Context, opts CreateOptions) (*models.ProjectMetadata, error) {
	author := opts.Author
	if author == "" {
		author = l.currentUser()
	}
	version := opts.Version
	if version == "" {
		version = models.DefaultVersion
	}
	description := opts.Description
	tags := models.NormalizeTags(opts.Tags)

	if opts.Prompter != nil {
		var err error
		if author, err = ask(ctx, opts.Prompter, "Author", author); err != nil {
			return nil, err
		}
		if description, err = ask(ctx, opts.Prompter, "Description", description); err != nil {
			return nil, err
		}
		if version, err = ask(ctx, opts.Prompter, "Version", version); err != nil {
			return nil, err
		}
		answer, err := ask(ctx, opts.Prompter, "Tags (comma separated)", strings.Join(tags, ","))
		if err != nil {
			return nil, err
		}
		tags = models.ParseTags(answer)
	}

	if _, err := models.ParseVersion(version); err != nil {
		return nil, err
	}

	return models.NewProjectMetadata(opts.Name, description, author, version, tags, l.now()), nil
}

func ask(ctx context.Context, p Prompter, label, def string) (string, error) {
	answer, err := p.Prompt(ctx, label, def)
	if err != nil {
		return "", cancelled(err)
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return def, nil
	}
	return answer, nil
}

// populate fills a fresh project directory.
func (l *Lifecycle) populate(ctx context.Context, path string, meta *models.ProjectMetadata) error {
	data, err := meta.Encode()
	if err != nil {
		return err
	}
	if err := l.fs.WriteFile(store.MetadataPath(path), data, 0644); err != nil {
		return &models.FilesystemError{Op: "write", Path: store.MetadataPath(path), Err: err}
	}

	if err := l.env.Create(ctx, store.EnvPath(path), true); err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}

	if err := l.template.CopyInto(path); err != nil {
		return fmt.Errorf("failed to copy template: %w", err)
	}

	if err := l.git.Init(ctx, path); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	if err := l.git.CommitAll(ctx, path, initialCommit); err != nil {
		return fmt.Errorf("failed to create initial commit: %w", err)
	}
	if err := l.git.RenameBranch(ctx, path, defaultBranch); err != nil {
		return fmt.Errorf("failed to rename branch: %w", err)
	}
	return nil
}
