package idman

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/idm-go/idm/logger"
)

// SpawnError is returned when IDMan.exe could not be started at all.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Command returns the prepared, unstarted command. Output is discarded.
func (r *Request) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.toolPath, r.Args()...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd
}

// Run executes IDM with the current settings and waits for it to exit.
func (r *Request) Run() error {
	return r.RunContext(context.Background())
}

// RunContext is Run with ctx bound to the child process; cancelling ctx kills it.
//
// Only failing to start the process is reported, as a *SpawnError. IDM's exit
// status and output are not inspected, so a download IDM rejects still
// returns nil.
func (r *Request) RunContext(ctx context.Context) error {
	cmd := r.Command(ctx)

	logger.Debug("starting idm", "path", r.toolPath, "args", cmd.Args[1:])

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &SpawnError{Path: r.toolPath, Err: err}
	}

	err := cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Debug("idm exited", "path", r.toolPath, "code", exitErr.ExitCode())
		return nil
	}
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", r.toolPath, err)
	}

	logger.Debug("idm exited", "path", r.toolPath, "code", 0)
	return nil
}
