// Package license harvests third-party license notices for the packages
// bundled into a build.
package license

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
	packageurl "github.com/package-url/packageurl-go"

	"github.com/pygame-manager/pgm/internal/filesystem"
	"github.com/pygame-manager/pgm/internal/manifest"
	"github.com/pygame-manager/pgm/internal/pyenv"
	"github.com/pygame-manager/pgm/internal/registry"
)

// ReadmeFile is written next to the notices.
const ReadmeFile = "README.txt"

const ruleWidth = 70

// Failure records a package whose notice could not be written.
type Failure struct {
	Package string
	Version string
	Err     error
}

// Result summarizes one collection run. Failures are not errors; the
// batch always runs to the end.
type Result struct {
	Written  int
	Failures []Failure
}

// Collector writes license notices for installed packages.
type Collector struct {
	fs      filesystem.FileSystem
	env     pyenv.Environment
	fetcher registry.Fetcher
	logger  *slog.Logger
}

// NewCollector creates a Collector.
func NewCollector(fs filesystem.FileSystem, env pyenv.Environment, fetcher registry.Fetcher, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{fs: fs, env: env, fetcher: fetcher, logger: logger}
}

// Collect writes one notice per package name into outDir, followed by a
// README. Network and HTTP failures are recorded per package. The
// returned error is reserved for local filesystem failures.
func (c *Collector) Collect(ctx context.Context, envPath string, names []string, outDir string) (Result, error) {
	var result Result

	if err := c.fs.MkdirAll(outDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create licenses directory: %w", err)
	}

	c.logger.Debug("collecting licenses", "packages", len(names), "dir", outDir)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		registryName := manifest.RegistryName(name)
		installed := manifest.ResolvedVersion(c.env, envPath, name, registryName)
		if installed == manifest.UnknownVersion {
			c.logger.Warn("could not determine installed version", "package", registryName)
		}

		query := installed
		if query == manifest.UnknownVersion {
			query = ""
		}

		info, err := c.fetcher.Package(ctx, registryName, query)
		if err != nil {
			c.logger.Warn("failed to fetch license metadata", "package", registryName, "version", installed, "error", err)
			result.Failures = append(result.Failures, Failure{Package: registryName, Version: installed, Err: err})
			continue
		}

		notice := NewNotice(registryName, installed, info)
		if notice.License == "" {
			c.logger.Warn("license not specified", "package", registryName)
		}

		path := filepath.Join(outDir, notice.FileName())
		if err := c.fs.WriteFile(path, []byte(notice.Render()), 0644); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.Written++
	}

	readme := filepath.Join(outDir, ReadmeFile)
	if err := c.fs.WriteFile(readme, []byte(Readme()), 0644); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", readme, err)
	}

	return result, nil
}

// Notice is the content of one license file.
type Notice struct {
	Package     string
	Version     string
	Author      string
	Site        string
	License     string
	Classifiers []string
	ProjectURL  string
}

// NewNotice builds a notice from index metadata. The index's version wins
// over the installed one.
func NewNotice(registryName, installed string, info *registry.Info) Notice {
	version := info.Version
	if version == "" {
		version = installed
	}

	author := strings.TrimSpace(info.Author)
	if author == "" {
		author = "Unknown"
	}

	license := strings.TrimSpace(info.License)
	if license == "" {
		license = strings.TrimSpace(info.LicenseExpression)
	}

	projectURL := info.ProjectURL
	if projectURL == "" {
		projectURL = fmt.Sprintf("https://pypi.org/project/%s/%s/", registryName, version)
	}

	var classifiers []string
	for _, c := range info.Classifiers {
		if strings.HasPrefix(c, "License ::") {
			classifiers = append(classifiers, c)
		}
	}

	return Notice{
		Package:     registryName,
		Version:     version,
		Author:      author,
		Site:        info.HomePage,
		License:     license,
		Classifiers: classifiers,
		ProjectURL:  projectURL,
	}
}

// FileName is "<package>_<version>_LICENSE.txt".
func (n Notice) FileName() string {
	return fmt.Sprintf("%s_%s_LICENSE.txt", n.Package, n.Version)
}

// PURL returns the Package URL of the notice's package.
func (n Notice) PURL() string {
	version := n.Version
	if version == manifest.UnknownVersion {
		version = ""
	}
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", strings.ToLower(n.Package), version, nil, "").ToString()
}

// SPDX returns the license when it is a valid SPDX expression.
func (n Notice) SPDX() (string, bool) {
	if n.License == "" || strings.Contains(n.License, "\n") {
		return "", false
	}
	valid, _ := spdxexp.ValidateLicenses([]string{n.License})
	return n.License, valid
}

// Render formats the notice.
func (n Notice) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Package: %s\n", n.Package)
	fmt.Fprintf(&b, "Version: %s\n", n.Version)
	fmt.Fprintf(&b, "Author: %s\n", n.Author)
	if n.Site != "" {
		fmt.Fprintf(&b, "Site: %s\n", n.Site)
	}
	fmt.Fprintf(&b, "Package URL: %s\n", n.PURL())
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	if n.License != "" {
		fmt.Fprintf(&b, "License: %s\n", n.License)
		if expr, ok := n.SPDX(); ok {
			fmt.Fprintf(&b, "SPDX: %s\n", expr)
		}
	} else {
		b.WriteString("License: Not specified\n")
	}
	b.WriteString("\n")

	if len(n.Classifiers) > 0 {
		b.WriteString("License Classifiers:\n")
		for _, c := range n.Classifiers {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	b.WriteString("For the full license text, please visit:\n")
	b.WriteString(n.ProjectURL + "\n")

	return b.String()
}

// Readme returns the fixed README written beside the notices.
func Readme() string {
	rule := strings.Repeat("=", ruleWidth)
	return "THIRD-PARTY LICENSES\n" +
		rule + "\n\n" +
		"This directory contains license information for all third-party\n" +
		"libraries included in this application.\n\n" +
		"All license information was retrieved from PyPI.\n\n" +
		rule + "\n"
}
