package apache

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/apachemgr/apachemgr/pkg/logging"
)

// Result captures the outcome of a host command.
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
}

// Runner executes host commands. The concrete implementation shells out;
// tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs commands via os/exec with a hard per-command timeout.
type ExecRunner struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewExecRunner creates an ExecRunner. A zero timeout defaults to 30s.
func NewExecRunner(timeout time.Duration, log *slog.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logging.Nop()
	}
	return &ExecRunner{timeout: timeout, log: log}
}

// Run executes the command and captures stdout and stderr. A command that
// exceeds the timeout is killed and reported as a failure.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Success: err == nil,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if ctx.Err() == context.DeadlineExceeded {
		res.Stderr = "Command timed out"
	} else if err != nil && res.Stderr == "" {
		res.Stderr = err.Error()
	}

	r.log.Debug("command finished",
		"command", name,
		"args", args,
		"success", res.Success)
	return res
}
