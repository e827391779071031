package models

import (
	"testing"
)

func TestParseVersion_WithPrerelease(t *testing.T) {
	tests := []struct {
		input    string
		expected *Version
	}{
		{"1.2.3-rc0", &Version{1, 2, 3, "rc0"}},
		{"v1.2.3-rc0", &Version{1, 2, 3, "rc0"}},
		{"0.1.0-rc5", &Version{0, 1, 0, "rc5"}},
		{"2.0.0-beta.1", &Version{2, 0, 0, "beta.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseVersion(tt.input)
			if err != nil {
				t.Fatalf("ParseVersion(%q) error: %v", tt.input, err)
			}

			if *result != *tt.expected {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseVersion_WithoutPrerelease(t *testing.T) {
	tests := []struct {
		input    string
		expected *Version
	}{
		{"1.2.3", &Version{1, 2, 3, ""}},
		{"v1.2.3", &Version{1, 2, 3, ""}},
		{"0.0.0", &Version{0, 0, 0, ""}},
		{"1.0.0+build.7", &Version{1, 0, 0, ""}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseVersion(tt.input)
			if err != nil {
				t.Fatalf("ParseVersion(%q) error: %v", tt.input, err)
			}

			if *result != *tt.expected {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseVersion_Invalid(t *testing.T) {
	for _, input := range []string{"", "1", "1.2", "1.2.3.4", "a.b.c", "01.2.3"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseVersion(input); err == nil {
				t.Errorf("ParseVersion(%q) expected error", input)
			}
		})
	}
}

func TestVersion_String_WithPrerelease(t *testing.T) {
	tests := []struct {
		version  *Version
		expected string
	}{
		{&Version{1, 2, 3, "rc0"}, "1.2.3-rc0"},
		{&Version{0, 1, 0, ""}, "0.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.version.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestVersion_Compare_PrereleaseOrdering(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"1.0.0-rc0", "1.0.0", -1},
		{"1.0.0-rc0", "1.0.0-rc1", -1},
		{"1.0.0", "1.0.0", 0},
		{"1.2.0", "1.1.9", 1},
		{"0.9.0", "1.0.0-rc0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a, _ := ParseVersion(tt.a)
			b, _ := ParseVersion(tt.b)
			if got := a.Compare(b); got != tt.expected {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestVersion_IsPrerelease(t *testing.T) {
	if !(&Version{1, 0, 0, "rc0"}).IsPrerelease() {
		t.Error("expected 1.0.0-rc0 to be a prerelease")
	}
	if (&Version{1, 0, 0, ""}).IsPrerelease() {
		t.Error("expected 1.0.0 not to be a prerelease")
	}
}
