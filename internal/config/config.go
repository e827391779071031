// Package config loads pgm configuration.
//
// The configuration file is located by, in order:
//   - the --config flag,
//   - the PGM_CONFIG environment variable,
//   - $XDG_CONFIG_HOME/pgm/config.yaml, when that file exists.
//
// Without a file every setting keeps its default. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding a config file path.
const EnvVar = "PGM_CONFIG"

// Config is the complete pgm configuration.
type Config struct {
	// ProjectsRoot is the directory holding every project.
	// Default: <xdg data home>/pygame
	ProjectsRoot string `yaml:"projects_root"`

	// Python is the interpreter used to create project environments.
	// Default: python3 (python on Windows)
	Python string `yaml:"python"`

	Registry RegistryConfig `yaml:"registry"`
	Native   NativeConfig   `yaml:"native"`
	Web      WebConfig      `yaml:"web"`
	Delete   DeleteConfig   `yaml:"delete"`
}

// RegistryConfig configures the package index used for license lookups.
type RegistryConfig struct {
	// URL is the base URL of the index JSON API.
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// NativeConfig configures native (cx_Freeze) builds.
type NativeConfig struct {
	// Python runs the generated build descriptor. Empty means the
	// project's own environment interpreter.
	Python string `yaml:"python"`

	// FrameworkDependency is the manifest name of the game framework.
	FrameworkDependency string `yaml:"framework_dependency"`

	// PackagingDependency is the import name the packager understands in
	// place of FrameworkDependency.
	PackagingDependency string `yaml:"packaging_dependency"`

	// AssetDirs are copied verbatim into the build output.
	AssetDirs []string `yaml:"asset_dirs"`

	// ExcludedDependencies never reach the packager.
	ExcludedDependencies []string `yaml:"excluded_dependencies"`
}

// WebConfig configures web runs and builds.
type WebConfig struct {
	DevURL    string        `yaml:"dev_url"`
	OpenDelay time.Duration `yaml:"open_delay"`
}

// DeleteConfig configures project deletion.
type DeleteConfig struct {
	Countdown time.Duration `yaml:"countdown"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	python := "python3"
	if runtime.GOOS == "windows" {
		python = "python"
	}

	return &Config{
		ProjectsRoot: filepath.Join(xdg.DataHome, "pygame"),
		Python:       python,
		Registry: RegistryConfig{
			URL:       "https://pypi.org",
			Timeout:   5 * time.Second,
			UserAgent: "pgm (+https://github.com/pygame-manager/pgm)",
		},
		Native: NativeConfig{
			FrameworkDependency:  "pygame_ce",
			PackagingDependency:  "pygame",
			AssetDirs:            []string{"assets", "data"},
			ExcludedDependencies: []string{"pygbag"},
		},
		Web: WebConfig{
			DevURL:    "http://localhost:8000/",
			OpenDelay: 10 * time.Second,
		},
		Delete: DeleteConfig{
			Countdown: 3 * time.Second,
		},
	}
}

// Load resolves the config file location and loads it. An empty flagPath
// falls through to PGM_CONFIG and then the XDG location.
func Load(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		candidate := filepath.Join(xdg.ConfigHome, "pgm", "config.yaml")
		if _, err := os.Stat(candidate); err != nil {
			return Default(), nil
		}
		path = candidate
	}

	return LoadFile(path)
}

// LoadFile loads configuration from path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ProjectsRoot = expandHome(cfg.ProjectsRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are usable.
func (c *Config) Validate() error {
	var errs []error

	if c.ProjectsRoot == "" {
		errs = append(errs, errors.New("projects_root is required"))
	} else if !filepath.IsAbs(c.ProjectsRoot) {
		errs = append(errs, fmt.Errorf("projects_root must be absolute, got %q", c.ProjectsRoot))
	}
	if c.Python == "" {
		errs = append(errs, errors.New("python is required"))
	}
	if c.Registry.URL == "" {
		errs = append(errs, errors.New("registry.url is required"))
	}
	if c.Registry.Timeout <= 0 {
		errs = append(errs, errors.New("registry.timeout must be positive"))
	}
	if c.Delete.Countdown < 0 {
		errs = append(errs, errors.New("delete.countdown must not be negative"))
	}
	if c.Web.OpenDelay < 0 {
		errs = append(errs, errors.New("web.open_delay must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == '\\') {
		return filepath.Join(xdg.Home, path[2:])
	}
	return os.ExpandEnv(path)
}
