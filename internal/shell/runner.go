// Package shell wraps subprocess execution behind a small Runner interface
// so the orchestration logic never inspects more than an exit code and the
// captured output, and tests can substitute a fake.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result captures the outcome of a subprocess run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands. Run blocks until the command exits;
// a non-zero exit status is reported via Result.ExitCode, not the error.
// The error return is reserved for spawn failures (missing binary, bad dir).
// Start launches a command without waiting for it.
type Runner interface {
	Run(ctx context.Context, dir string, argv ...string) (Result, error)
	Start(ctx context.Context, dir string, argv ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes argv[0] with the remaining arguments in dir.
func (ExecRunner) Run(ctx context.Context, dir string, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Command ran and failed; the exit code carries the outcome.
			return Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		return Result{}, fmt.Errorf("running %s: %w", argv[0], err)
	}

	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// Start launches argv in dir without waiting for completion.
func (ExecRunner) Start(ctx context.Context, dir string, argv ...string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", argv[0], err)
	}
	return nil
}

// Which reports whether a binary is available on PATH.
func Which(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
