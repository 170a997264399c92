package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
)

// stderr kept on an ExitError and in logs
const maxStderr = 8 << 10

// Command is one invocation of an external document decoder.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Output is what a decoder wrote. Stderr is filled on failure as well.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes decoder commands; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExitError is a decoder that ran but exited non-zero, usually because the
// document is corrupted or password protected.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, e.Stderr)
}

type execRunner struct {
	logger *slog.Logger
}

func newExecRunner(logger *slog.Logger) execRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return execRunner{logger: logger}
}

// Run resolves cmd.Name on PATH first so a missing decoder is reported as
// common.ErrDecoderUnavailable rather than as a bad document.
func (r execRunner) Run(ctx context.Context, cmd Command) (Output, error) {
	path, err := exec.LookPath(cmd.Name)
	if err != nil {
		r.logger.Error("decoder not installed", "cmd", cmd.Name, "error", err)
		return Output{}, fmt.Errorf("%w: %s: %v", common.ErrDecoderUnavailable, cmd.Name, err)
	}

	start := time.Now()
	c := exec.CommandContext(ctx, path, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	r.logger.Debug("running decoder", "cmd", cmd.String())
	err = c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	log := r.logger.With("cmd", cmd.Name, "duration_ms", time.Since(start).Milliseconds())

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		log.Debug("decoder finished", "stdout_bytes", stdout.Len(), "stderr_bytes", stderr.Len())
		return out, nil
	case ctx.Err() != nil:
		log.Warn("decoder interrupted", "error", ctx.Err())
		return out, ctx.Err()
	case errors.As(err, &exitErr):
		xe := &ExitError{
			Name:   cmd.Name,
			Code:   exitErr.ExitCode(),
			Stderr: truncate(strings.TrimSpace(stderr.String()), maxStderr),
		}
		log.Warn("decoder rejected document", "exit_code", xe.Code, "stderr", xe.Stderr)
		return out, xe
	default:
		log.Error("decoder did not run", "error", err)
		return out, err
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
