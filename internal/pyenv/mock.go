package pyenv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pygame-manager/pgm/internal/filesystem"
)

// MockPythonVersion names the lib/pythonX.Y directory of mock environments.
const MockPythonVersion = "python3.12"

// MockEnvironment implements Environment on a MockFileSystem. Created
// environments get a bin/python file and an empty site-packages.
type MockEnvironment struct {
	fs *filesystem.MockFileSystem

	Created []string

	// Hooks for testing error scenarios
	CreateError error
}

// NewMockEnvironment creates a new MockEnvironment
func NewMockEnvironment(fs *filesystem.MockFileSystem) *MockEnvironment {
	return &MockEnvironment{fs: fs}
}

func (m *MockEnvironment) Create(ctx context.Context, path string, withInstaller bool) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Created = append(m.Created, path)
	m.fs.AddFile(m.Interpreter(path), []byte("#!python"))
	m.fs.AddDir(filepath.Join(path, "lib", MockPythonVersion, "site-packages"))
	return nil
}

func (m *MockEnvironment) Interpreter(path string) string {
	return interpreterFor("linux", path)
}

func (m *MockEnvironment) SitePackages(path string) (string, error) {
	return sitePackagesFor(m.fs, "linux", path)
}

func (m *MockEnvironment) InstalledVersion(path, name string) (string, bool) {
	site, err := m.SitePackages(path)
	if err != nil {
		return "", false
	}
	return installedVersion(m.fs, site, name)
}

// Install records a distribution as installed in the environment at path.
func (m *MockEnvironment) Install(path, name, version string) {
	dir := strings.ReplaceAll(name, "-", "_") + "-" + version + ".dist-info"
	meta := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n\n", name, version)
	m.fs.AddFile(filepath.Join(path, "lib", MockPythonVersion, "site-packages", dir, "METADATA"), []byte(meta))
}
