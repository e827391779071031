package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"
)

// Names of the four artifacts that make a directory a project.
const (
	MetadataFile = "metadata.json"
	ManifestFile = "requirements.txt"
	EnvDir       = ".env"
	GitDir       = ".git"
)

// CreatedLayout is the date layout of ProjectMetadata.Created.
const CreatedLayout = "02/01/2006"

// ProjectState classifies a directory under the projects root.
//
// Incomplete directories hold some but not all of the project artifacts.
// Reads treat them as Missing, writes treat them as a name collision.
type ProjectState int

const (
	ProjectMissing ProjectState = iota
	ProjectIncomplete
	ProjectValid
)

func (s ProjectState) String() string {
	switch s {
	case ProjectMissing:
		return "missing"
	case ProjectIncomplete:
		return "incomplete"
	case ProjectValid:
		return "valid"
	default:
		return fmt.Sprintf("ProjectState(%d)", int(s))
	}
}

// Exists reports whether anything occupies the project name.
func (s ProjectState) Exists() bool {
	return s != ProjectMissing
}

// Tags is the ordered tag list of a project. It decodes from either a JSON
// array or a comma-separated string.
type Tags []string

// UnmarshalJSON accepts ["a","b"] as well as "a, b".
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Tags{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NormalizeTags(strings.Split(s, ","))
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		*t = Tags{}
		return nil
	}
	*t = NormalizeTags(list)
	return nil
}

// NormalizeTags trims every tag and drops empty entries, keeping order.
func NormalizeTags(parts []string) Tags {
	tags := Tags{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// ParseTags normalizes a comma-separated tag string.
func ParseTags(s string) Tags {
	return NormalizeTags(strings.Split(s, ","))
}

// ProjectMetadata is the record persisted in metadata.json.
type ProjectMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	Tags        Tags   `json:"tags"`
	Created     string `json:"created"`
}

// NewProjectMetadata creates metadata stamped with the given creation time.
func NewProjectMetadata(name, description, author, version string, tags Tags, created time.Time) *ProjectMetadata {
	if tags == nil {
		tags = Tags{}
	}
	return &ProjectMetadata{
		Name:        name,
		Description: description,
		Author:      author,
		Version:     version,
		Tags:        tags,
		Created:     created.Format(CreatedLayout),
	}
}

// ParseMetadata decodes metadata.json. Comments and trailing commas are
// tolerated since the file is meant to be edited by hand.
func ParseMetadata(data []byte) (*ProjectMetadata, error) {
	var meta ProjectMetadata
	if err := json.Unmarshal(jsonc.ToJSON(data), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", MetadataFile, err)
	}
	if meta.Tags == nil {
		meta.Tags = Tags{}
	}
	return &meta, nil
}

// Encode renders the metadata as 4-space indented JSON.
func (m *ProjectMetadata) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", MetadataFile, err)
	}
	return append(data, '\n'), nil
}

// SetMetadataName rewrites only the name field of an encoded record and
// leaves every other key, including unknown ones, as it was.
func SetMetadataName(data []byte, name string) ([]byte, error) {
	clean := jsonc.ToJSON(data)
	if !json.Valid(clean) {
		return nil, fmt.Errorf("failed to parse %s: invalid JSON", MetadataFile)
	}
	out, err := sjson.SetBytes(clean, "name", name)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", MetadataFile, err)
	}
	return out, nil
}
