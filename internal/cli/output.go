package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pygame-manager/pgm/internal/tui"
)

var errNotInteractive = errors.New("stdin is not a terminal")

// requireInteractive fails unless prompts can be shown. hint names the
// flag that skips the prompt.
func (a *App) requireInteractive(hint string) error {
	if a.Interactive != nil && a.Interactive() {
		return nil
	}
	if hint == "" {
		return errNotInteractive
	}
	return fmt.Errorf("%w; %s", errNotInteractive, hint)
}

// stepReporter prints build progress.
type stepReporter struct {
	out io.Writer
}

func (r *stepReporter) Step(n, total int, title string) {
	fmt.Fprintf(r.out, "%s %s\n", tui.StepStyle.Render(fmt.Sprintf("%d/%d", n, total)), title)
}

func (r *stepReporter) Detail(msg string) {
	fmt.Fprintf(r.out, "  %s\n", msg)
}

// Frame is one traceback entry that points into the project.
type Frame struct {
	Index int
	File  string
	Line  int
}

// Crash is the useful part of a Python traceback.
type Crash struct {
	Type    string
	Message string
	Frames  []Frame
}

// ParseCrash extracts the exception and the frames located under
// projectPath from captured stderr. Frames from the standard library and
// installed packages keep their position in the numbering but are not
// listed.
func ParseCrash(stderr, projectPath string) Crash {
	lines := strings.Split(strings.ReplaceAll(stderr, "\r\n", "\n"), "\n")

	var crash Crash
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		kind, msg, ok := strings.Cut(line, ":")
		if !ok || strings.ContainsAny(kind, " \t\"") {
			continue
		}
		if strings.Contains(kind, "Error") || strings.Contains(kind, "Exception") || strings.Contains(kind, "Warning") {
			crash.Type = kind
			crash.Message = strings.TrimSpace(msg)
			break
		}
	}

	index := 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "File \"") {
			continue
		}
		index++

		rest := strings.TrimPrefix(line, "File \"")
		file, rest, ok := strings.Cut(rest, "\"")
		if !ok || !within(projectPath, file) {
			continue
		}

		frame := Frame{Index: index, File: filepath.Base(file)}
		if _, after, ok := strings.Cut(rest, "line "); ok {
			num, _, _ := strings.Cut(after, ",")
			frame.Line, _ = strconv.Atoi(strings.TrimSpace(num))
		}
		crash.Frames = append(crash.Frames, frame)
	}

	return crash
}

func within(dir, path string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Text renders the crash report body.
func (c Crash) Text(name string, code int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: '%s' crashed\n", name)
	if c.Type == "" {
		fmt.Fprintf(&b, "Type: ProcessError\nMessage: process exited with code %d", code)
		return b.String()
	}
	fmt.Fprintf(&b, "Type: %s\nMessage: %s", c.Type, c.Message)
	if len(c.Frames) > 0 {
		b.WriteString("\nTraceback:")
		for _, f := range c.Frames {
			fmt.Fprintf(&b, "\n  %d -> File: %s | Line: %d", f.Index, f.File, f.Line)
		}
	}
	return b.String()
}
