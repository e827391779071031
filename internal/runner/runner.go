// Package runner invokes external tools with an explicit working
// directory, environment and argument vector.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// MaxStderrLines bounds the stderr excerpt kept on an ExitError.
const MaxStderrLines = 10

// Command describes one process invocation. Env entries are added on top
// of the parent environment; nothing process-wide is mutated.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    map[string]string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner runs commands to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a tool that ran but exited non-zero.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
	if lines := e.StderrLines(MaxStderrLines); len(lines) > 0 {
		msg += ":\n" + strings.Join(lines, "\n")
	}
	return msg
}

// StderrLines returns up to n non-empty lines of captured stderr.
func (e *ExitError) StderrLines(n int) []string {
	var lines []string
	for _, line := range strings.Split(e.Stderr, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

// OSRunner runs commands with os/exec.
type OSRunner struct {
	// WaitDelay bounds how long a cancelled process may take to exit
	// after being interrupted.
	WaitDelay time.Duration
}

// NewOSRunner creates an OSRunner.
func NewOSRunner() *OSRunner {
	return &OSRunner{WaitDelay: 5 * time.Second}
}

// Run executes cmd and waits for it. Stderr is always captured for the
// ExitError in addition to being forwarded to cmd.Stderr.
func (r *OSRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = MergeEnv(os.Environ(), c.Env)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.WaitDelay = r.WaitDelay

	var stderr bytes.Buffer
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	configureProcessGroup(cmd)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", c.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Tool: c.Name, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("failed to run %s: %w", c.Name, err)
	}
	return nil
}

// Output runs cmd and returns its trimmed stdout.
func Output(ctx context.Context, r Runner, cmd Command) (string, error) {
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := r.Run(ctx, cmd); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// MergeEnv overlays extra onto base ("KEY=value" pairs). Keys in extra
// replace existing entries; new keys are appended in sorted order.
func MergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}

	merged := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, override := extra[key]; override {
			continue
		}
		merged = append(merged, kv)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, k+"="+extra[k])
	}
	return merged
}
