// Package template provides the file tree every new project starts from.
package template

import (
	"embed"
	"io/fs"

	"github.com/pygame-manager/pgm/internal/filesystem"
)

//go:embed all:files
var files embed.FS

// Files returns the template tree.
func Files() fs.FS {
	sub, err := fs.Sub(files, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

// Provider copies a template into a project directory.
type Provider interface {
	CopyInto(dst string) error
}

// Embedded copies the built-in template.
type Embedded struct {
	fs  filesystem.FileSystem
	src fs.FS
}

// NewEmbedded creates a Provider for the built-in template.
func NewEmbedded(fsys filesystem.FileSystem) *Embedded {
	return &Embedded{fs: fsys, src: Files()}
}

// CopyInto copies the template into dst. Files that already exist in dst
// are left alone.
func (e *Embedded) CopyInto(dst string) error {
	return filesystem.CopyFromFS(e.fs, e.src, ".", dst, filesystem.CopyOptions{NoOverwrite: true})
}
