// Package media wraps the external ffmpeg/ffprobe tools: container
// probing, audio extraction, and subtitle burning.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is an external process execution response.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts process execution for testability.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner executes commands via os/exec. The context kills the child
// process on cancellation.
type ExecRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// ExecError captures one failed external command invocation.
type ExecError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error formats the failure with command context and trailing stderr.
func (e *ExecError) Error() string {
	tail := lastLines(e.Stderr, 3)
	if tail == "" {
		return fmt.Sprintf("%s failed (exit=%d)", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s failed (exit=%d): %s", e.Name, e.ExitCode, tail)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ExecError) Unwrap() error { return e.Err }

// lastLines returns the last n non-empty lines of s joined with "; ".
func lastLines(s string, n int) string {
	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "; ")
}
