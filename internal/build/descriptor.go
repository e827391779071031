package build

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DescriptorFile is the name of the generated cx_Freeze setup script.
const DescriptorFile = "setup_cxfreeze.py"

// Descriptor holds everything the cx_Freeze setup script needs.
type Descriptor struct {
	BuildID      string
	Name         string
	Version      string
	TargetName   string
	GUI          bool
	MainScript   string
	ProjectPath  string
	SitePackages string
	Output       string
	Packages     []string
	Modules      []string
	Dependencies []string
}

// Python string literals are written with Go quoting; every escape Go
// emits is also a valid Python escape.
const descriptorTemplate = `# Generated by pgm, build {{ .BuildID }}
import sys

from cx_Freeze import setup, Executable

sys.path.insert(0, {{ quote .SitePackages }})
sys.path.insert(0, {{ quote .ProjectPath }})

# Packages (directories with __init__.py)
packages = {{ template "list" .Packages }}

# Standalone modules
modules = {{ template "list" .Modules }}

# External packages from requirements.txt
external_packages = {{ template "list" .Dependencies }}

setup(
    name={{ .Name | default "Game" | quote }},
    version={{ .Version | default "1.0.0" | quote }},
    description={{ printf "%s Build" (.Name | default "Game") | quote }},
    executables=[Executable({{ quote .MainScript }}, target_name={{ quote .TargetName }}, base={{ if .GUI }}"gui"{{ else }}None{{ end }})],
    options={
        "build_exe": {
            "build_exe": {{ quote .Output }},
            "packages": packages + external_packages,
            "includes": modules,
            "include_files": [],
            "path": [{{ quote .SitePackages }}, {{ quote .ProjectPath }}] + sys.path,
        }
    },
)
{{- define "list" }}[{{ range $i, $v := . }}{{ if $i }}, {{ end }}{{ quote $v }}{{ end }}]{{ end }}
`

var descriptorTmpl = template.Must(
	template.New(DescriptorFile).Funcs(sprig.TxtFuncMap()).Parse(descriptorTemplate),
)

// Render produces the setup script source.
func (d *Descriptor) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := descriptorTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", DescriptorFile, err)
	}
	return buf.Bytes(), nil
}
