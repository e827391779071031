// Package manifest reads requirements.txt dependency manifests.
package manifest

import (
	"fmt"
	"strings"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/pyenv"
)

// UnknownVersion is reported when no installed version can be found.
const UnknownVersion = "unknown"

// specifierChars start a version specifier, extras list, environment
// marker or direct reference.
const specifierChars = "=<>!~[;@ \t"

// ParsePackageNames returns the package name of every declaration in a
// manifest, in order and with duplicates kept. Names use the environment
// spelling (hyphens become underscores). Comment, blank and pip option
// lines are skipped.
func ParsePackageNames(text string) []string {
	names := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.IndexAny(line, specifierChars); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, strings.ReplaceAll(line, "-", "_"))
	}
	return names
}

// RegistryName returns the public index spelling of a package name.
func RegistryName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// ResolvedVersion looks up the installed version of a package in the
// environment at envPath, trying packageName, alternateName and the
// underscore spelling of alternateName. It returns UnknownVersion when
// none is installed.
func ResolvedVersion(env pyenv.Environment, envPath, packageName, alternateName string) string {
	candidates := []string{packageName, alternateName, strings.ReplaceAll(alternateName, "-", "_")}
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if version, ok := env.InstalledVersion(envPath, name); ok && version != "" {
			return version
		}
	}
	return UnknownVersion
}

// ReadFile parses the manifest at path.
func ReadFile(fs filesystem.FileSystem, path string) ([]string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParsePackageNames(string(data)), nil
}

// Substitute returns a copy of names with every from replaced by to.
func Substitute(names []string, from, to string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if n == from {
			n = to
		}
		out[i] = n
	}
	return out
}

// Without returns a copy of names with the excluded entries removed.
func Without(names []string, excluded ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		skip := false
		for _, e := range excluded {
			if n == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, n)
		}
	}
	return out
}
