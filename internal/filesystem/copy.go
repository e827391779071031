package filesystem

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// CopyOptions tunes CopyTree and CopyFromFS.
type CopyOptions struct {
	// NoOverwrite keeps files that already exist at the destination.
	NoOverwrite bool

	// Skip, when set, is consulted with the slash-separated path relative
	// to the source root. Returning true skips the entry (and its subtree
	// for directories).
	Skip func(rel string, isDir bool) bool
}

// CopyTree recursively copies the directory src to dst within fsys.
func CopyTree(fsys FileSystem, src, dst string, opts CopyOptions) error {
	return fsys.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && opts.Skip != nil && opts.Skip(filepath.ToSlash(rel), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return fsys.MkdirAll(target, 0755)
		}

		if opts.NoOverwrite && fsys.Exists(target) {
			return nil
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		perm := fs.FileMode(0644)
		if info, err := d.Info(); err == nil && info.Mode().Perm() != 0 {
			perm = info.Mode().Perm()
		}
		if err := fsys.WriteFile(target, data, perm); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	})
}

// CopyFromFS copies the tree rooted at root inside src (for example an
// embedded template) into dst on fsys.
func CopyFromFS(fsys FileSystem, src fs.FS, root, dst string, opts CopyOptions) error {
	return fs.WalkDir(src, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := path
		if root != "." {
			rel, err = filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
		}
		if rel != "." && opts.Skip != nil && opts.Skip(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, filepath.FromSlash(rel))
		if d.IsDir() {
			return fsys.MkdirAll(target, 0755)
		}

		if opts.NoOverwrite && fsys.Exists(target) {
			return nil
		}

		data, err := fs.ReadFile(src, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := fsys.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	})
}
