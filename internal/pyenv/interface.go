// Package pyenv manages the isolated Python environment kept in each
// project's .env directory.
package pyenv

import (
	"context"
)

// Environment provides an abstraction over virtual environments for testability
type Environment interface {
	// Create builds a new environment at path. withInstaller controls
	// whether pip is bootstrapped into it.
	Create(ctx context.Context, path string, withInstaller bool) error

	// Interpreter returns the python executable inside the environment.
	Interpreter(path string) string

	// SitePackages returns the environment's site-packages directory.
	SitePackages(path string) (string, error)

	// InstalledVersion reports the installed version of a distribution.
	InstalledVersion(path, name string) (string, bool)
}
