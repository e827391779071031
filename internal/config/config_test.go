package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, "pygame", filepath.Base(cfg.ProjectsRoot))
	require.Equal(t, "https://pypi.org", cfg.Registry.URL)
	require.Equal(t, 5*time.Second, cfg.Registry.Timeout)
	require.Equal(t, "pygame_ce", cfg.Native.FrameworkDependency)
	require.Equal(t, "pygame", cfg.Native.PackagingDependency)
	require.Equal(t, []string{"assets", "data"}, cfg.Native.AssetDirs)
	require.Equal(t, "http://localhost:8000/", cfg.Web.DevURL)
	require.Equal(t, 10*time.Second, cfg.Web.OpenDelay)
	require.Equal(t, 3*time.Second, cfg.Delete.Countdown)
	require.NoError(t, cfg.Validate())
}

func TestParse_OverridesDefaults(t *testing.T) {
	root := filepath.Join(t.TempDir(), "projects")
	cfg, err := Parse([]byte(`
projects_root: ` + root + `
registry:
  url: http://localhost:9999
  timeout: 250ms
native:
  asset_dirs: [assets, sounds]
delete:
  countdown: 0s
`))
	require.NoError(t, err)

	require.Equal(t, root, cfg.ProjectsRoot)
	require.Equal(t, "http://localhost:9999", cfg.Registry.URL)
	require.Equal(t, 250*time.Millisecond, cfg.Registry.Timeout)
	require.Equal(t, []string{"assets", "sounds"}, cfg.Native.AssetDirs)
	require.Equal(t, time.Duration(0), cfg.Delete.Countdown)
	// untouched keys keep their defaults
	require.Equal(t, "pygame_ce", cfg.Native.FrameworkDependency)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("projects_rot: /tmp/x\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "projects_rot")
}

func TestParse_RelativeRoot(t *testing.T) {
	_, err := Parse([]byte("projects_root: relative/dir\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be absolute")
}

func TestLoad_FlagWinsOverEnv(t *testing.T) {
	dir := t.TempDir()
	flagFile := filepath.Join(dir, "flag.yaml")
	envFile := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(flagFile, []byte("python: from-flag\n"), 0644))
	require.NoError(t, os.WriteFile(envFile, []byte("python: from-env\n"), 0644))

	t.Setenv(EnvVar, envFile)

	cfg, err := Load(flagFile)
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.Python)

	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Python)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config file")
}
