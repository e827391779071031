// Package store resolves project locations and decides which directories
// under the projects root are valid projects.
package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/models"
)

// Store maps project names to directories under a single root.
type Store struct {
	fs   filesystem.FileSystem
	root string
}

// New creates a Store rooted at root.
func New(fs filesystem.FileSystem, root string) *Store {
	return &Store{fs: fs, root: filepath.Clean(root)}
}

// FS returns the filesystem the store operates on.
func (s *Store) FS() filesystem.FileSystem {
	return s.fs
}

// Root returns the projects root, creating it if absent.
func (s *Store) Root() (string, error) {
	if err := s.fs.MkdirAll(s.root, 0755); err != nil {
		return "", &models.FilesystemError{Op: "create", Path: s.root, Err: err}
	}
	return s.root, nil
}

// ValidateName rejects names that could escape the projects root or
// refer to hidden or reserved entries.
func ValidateName(name string) error {
	reason := ""
	switch {
	case name == "":
		reason = "name is empty"
	case strings.TrimSpace(name) != name:
		reason = "name has leading or trailing whitespace"
	case name == "." || name == "..":
		reason = "name is reserved"
	case strings.HasPrefix(name, "."):
		reason = "name starts with '.'"
	case strings.ContainsAny(name, `/\`):
		reason = "name contains a path separator"
	case strings.ContainsRune(name, 0):
		reason = "name contains a NUL byte"
	}

	if reason != "" {
		return &models.InvalidNameError{Name: name, Reason: reason}
	}
	return nil
}

// PathFor returns the directory for name without touching the filesystem.
func (s *Store) PathFor(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// EnsurePath returns the directory for name, creating it if missing.
func (s *Store) EnsurePath(name string) (string, error) {
	path, err := s.PathFor(name)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path, 0755); err != nil {
		return "", &models.FilesystemError{Op: "create", Path: path, Err: err}
	}
	return path, nil
}

// State classifies the directory for name.
func (s *Store) State(name string) (models.ProjectState, error) {
	path, err := s.PathFor(name)
	if err != nil {
		return models.ProjectMissing, err
	}
	return StateAt(s.fs, path), nil
}

// IsValidProject reports whether all four project artifacts exist for name.
// Invalid names are never valid projects.
func (s *Store) IsValidProject(name string) bool {
	state, err := s.State(name)
	return err == nil && state == models.ProjectValid
}

// StateAt classifies an arbitrary directory.
func StateAt(fs filesystem.FileSystem, path string) models.ProjectState {
	if !fs.Exists(path) {
		return models.ProjectMissing
	}

	present := 0
	if filesystem.IsFile(fs, filepath.Join(path, models.MetadataFile)) {
		present++
	}
	if filesystem.IsFile(fs, filepath.Join(path, models.ManifestFile)) {
		present++
	}
	if filesystem.IsDir(fs, filepath.Join(path, models.EnvDir)) {
		present++
	}
	if filesystem.IsDir(fs, filepath.Join(path, models.GitDir)) {
		present++
	}

	if present == 4 {
		return models.ProjectValid
	}
	return models.ProjectIncomplete
}

// Require returns the path of name, or a not-found error unless it is a
// valid project.
func (s *Store) Require(name string) (string, error) {
	state, err := s.State(name)
	if err != nil {
		return "", err
	}
	if state != models.ProjectValid {
		return "", models.NotFound(name)
	}
	return filepath.Join(s.root, name), nil
}

// List returns the sorted names of valid projects.
func (s *Store) List() ([]string, error) {
	root, err := s.Root()
	if err != nil {
		return nil, err
	}

	entries, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || ValidateName(entry.Name()) != nil {
			continue
		}
		if StateAt(s.fs, filepath.Join(root, entry.Name())) == models.ProjectValid {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// MetadataPath returns the metadata.json path of a project directory.
func MetadataPath(projectPath string) string {
	return filepath.Join(projectPath, models.MetadataFile)
}

// ManifestPath returns the requirements.txt path of a project directory.
func ManifestPath(projectPath string) string {
	return filepath.Join(projectPath, models.ManifestFile)
}

// EnvPath returns the isolated environment path of a project directory.
func EnvPath(projectPath string) string {
	return filepath.Join(projectPath, models.EnvDir)
}

// ReadMetadata loads the metadata of a project directory.
func (s *Store) ReadMetadata(projectPath string) (*models.ProjectMetadata, error) {
	data, err := s.fs.ReadFile(MetadataPath(projectPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return models.ParseMetadata(data)
}
