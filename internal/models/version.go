package models

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultVersion is the version a new project starts at.
const DefaultVersion = "0.0.0"

// Version represents a semantic version
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string // e.g., "rc0", "alpha.1"
}

// ParseVersion parses a version string (e.g., "1.2.3", "v1.2.3", "1.2.3-rc0").
// Build metadata ("+build") is accepted and dropped.
func ParseVersion(s string) (*Version, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "v")

	if s == "" {
		return nil, fmt.Errorf("invalid version: empty")
	}

	if strings.Count(strings.SplitN(strings.SplitN(s, "-", 2)[0], "+", 2)[0], ".") != 2 {
		return nil, fmt.Errorf("invalid version format: %s (expected major.minor.patch)", s)
	}

	canonical := semver.Canonical("v" + s)
	if canonical == "" {
		return nil, fmt.Errorf("invalid version format: %s (expected major.minor.patch)", s)
	}

	core := strings.TrimPrefix(canonical, "v")
	prerelease := strings.TrimPrefix(semver.Prerelease(canonical), "-")
	if prerelease != "" {
		core = strings.TrimSuffix(core, "-"+prerelease)
	}

	parts := strings.Split(core, ".")
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	patch, _ := strconv.Atoi(parts[2])

	return &Version{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: prerelease,
	}, nil
}

// String returns the version as a string without 'v' prefix
func (v *Version) String() string {
	if v.Prerelease != "" {
		return fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Prerelease)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare compares two versions
// Returns -1 if v < other, 0 if v == other, 1 if v > other
func (v *Version) Compare(other *Version) int {
	return semver.Compare("v"+v.String(), "v"+other.String())
}

// IsPrerelease returns true if this version has a prerelease suffix
func (v *Version) IsPrerelease() bool {
	return v.Prerelease != ""
}
