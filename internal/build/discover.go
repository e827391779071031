package build

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/denormal/go-gitignore"

	"github.com/pygame-manager/pgm/internal/filesystem"
)

const (
	mainScript  = "main.py"
	initScript  = "__init__.py"
	cacheDir    = "__pycache__"
	ignoreFile  = ".gitignore"
	pythonExt   = ".py"
	webBuildDir = "build"
)

// Layout is the importable code found at the top level of a project.
type Layout struct {
	Packages []string
	Modules  []string
}

// ignoreRules loads the project's .gitignore. A project without one
// ignores nothing.
func ignoreRules(fsys filesystem.FileSystem, projectPath string) (gitignore.GitIgnore, error) {
	path := filepath.Join(projectPath, ignoreFile)
	if !fsys.Exists(path) {
		return nil, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ignoreFile, err)
	}

	return gitignore.New(bytes.NewReader(data), projectPath, nil), nil
}

func ignored(rules gitignore.GitIgnore, rel string, isDir bool) bool {
	if rules == nil {
		return false
	}
	match := rules.Relative(rel, isDir)
	return match != nil && match.Ignore()
}

// Discover lists the project's top-level packages (non-hidden directories
// holding __init__.py) and modules (.py files other than main.py). Paths
// matched by the project's .gitignore are skipped.
func Discover(fsys filesystem.FileSystem, projectPath string) (*Layout, error) {
	rules, err := ignoreRules(fsys, projectPath)
	if err != nil {
		return nil, err
	}

	entries, err := fsys.ReadDir(projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	layout := &Layout{Packages: []string{}, Modules: []string{}}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || ignored(rules, name, entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			if name != cacheDir && filesystem.IsFile(fsys, filepath.Join(projectPath, name, initScript)) {
				layout.Packages = append(layout.Packages, name)
			}
			continue
		}

		if strings.HasSuffix(name, pythonExt) && name != mainScript {
			layout.Modules = append(layout.Modules, strings.TrimSuffix(name, pythonExt))
		}
	}

	sort.Strings(layout.Packages)
	sort.Strings(layout.Modules)
	return layout, nil
}

// copyAssets copies every whitelisted top-level directory of the project
// into out. Directory names match case-insensitively. Returns the number
// of files copied.
func copyAssets(fsys filesystem.FileSystem, projectPath, out string, whitelist []string) (int, error) {
	allowed := make(map[string]bool, len(whitelist))
	for _, name := range whitelist {
		allowed[strings.ToLower(name)] = true
	}

	rules, err := ignoreRules(fsys, projectPath)
	if err != nil {
		return 0, err
	}

	entries, err := fsys.ReadDir(projectPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read project directory: %w", err)
	}

	copied := 0
	for _, entry := range entries {
		if !entry.IsDir() || !allowed[strings.ToLower(entry.Name())] {
			continue
		}

		src := filepath.Join(projectPath, entry.Name())
		err := filesystem.CopyTree(fsys, src, filepath.Join(out, entry.Name()), filesystem.CopyOptions{
			Skip: func(rel string, isDir bool) bool {
				if ignored(rules, filepath.Join(entry.Name(), filepath.FromSlash(rel)), isDir) {
					return true
				}
				if !isDir {
					copied++
				}
				return false
			},
		})
		if err != nil {
			return copied, err
		}
	}
	return copied, nil
}
