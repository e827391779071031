package pyenv

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/runner"
)

// Venv implements Environment with the standard library venv module.
type Venv struct {
	fs     filesystem.FileSystem
	runner runner.Runner
	python string
	goos   string
}

// NewVenv creates a Venv provider that bootstraps environments with python.
func NewVenv(fs filesystem.FileSystem, r runner.Runner, python string) *Venv {
	return &Venv{fs: fs, runner: r, python: python, goos: runtime.GOOS}
}

func (v *Venv) Create(ctx context.Context, path string, withInstaller bool) error {
	args := []string{"-m", "venv"}
	if !withInstaller {
		args = append(args, "--without-pip")
	}
	args = append(args, path)

	if err := v.runner.Run(ctx, runner.Command{Name: v.python, Args: args}); err != nil {
		return fmt.Errorf("failed to create environment at %s: %w", path, err)
	}
	return nil
}

func (v *Venv) Interpreter(path string) string {
	return interpreterFor(v.goos, path)
}

func (v *Venv) SitePackages(path string) (string, error) {
	return sitePackagesFor(v.fs, v.goos, path)
}

func (v *Venv) InstalledVersion(path, name string) (string, bool) {
	site, err := v.SitePackages(path)
	if err != nil {
		return "", false
	}
	return installedVersion(v.fs, site, name)
}

func interpreterFor(goos, envPath string) string {
	if goos == "windows" {
		return filepath.Join(envPath, "Scripts", "python.exe")
	}
	return filepath.Join(envPath, "bin", "python")
}

func sitePackagesFor(fs filesystem.FileSystem, goos, envPath string) (string, error) {
	if goos == "windows" {
		site := filepath.Join(envPath, "Lib", "site-packages")
		if filesystem.IsDir(fs, site) {
			return site, nil
		}
		return "", fmt.Errorf("no site-packages found in %s", envPath)
	}

	matches, err := fs.Glob(filepath.Join(envPath, "lib", "python*", "site-packages"))
	if err != nil {
		return "", fmt.Errorf("failed to search site-packages: %w", err)
	}
	for _, m := range matches {
		if filesystem.IsDir(fs, m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("no site-packages found in %s", envPath)
}

// NormalizeName folds a distribution name the way installers name their
// dist-info directories: lower case, runs of '-', '_' and '.' become '_'.
func NormalizeName(name string) string {
	var b strings.Builder
	prevSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '-' || r == '_' || r == '.' {
			if !prevSep {
				b.WriteByte('_')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}

func installedVersion(fs filesystem.FileSystem, site, name string) (string, bool) {
	want := NormalizeName(name)
	if want == "" {
		return "", false
	}

	entries, err := fs.ReadDir(site)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".dist-info")
		if !ok || !entry.IsDir() {
			continue
		}
		i := strings.LastIndex(base, "-")
		if i <= 0 || NormalizeName(base[:i]) != want {
			continue
		}

		data, err := fs.ReadFile(filepath.Join(site, entry.Name(), "METADATA"))
		if err == nil {
			if version := metadataVersion(data); version != "" {
				return version, true
			}
		}
		return base[i+1:], true
	}
	return "", false
}

// metadataVersion extracts the Version header of a core metadata file.
func metadataVersion(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		if value, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
