package domain

import (
	"context"
	"fmt"
	"time"
)

// Output is the fully captured result of one external tool invocation.
// Exit status is reported independently of stream content.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes exactly one synchronous invocation of the external
// backup tool. A zero timeout means the invocation may run unbounded;
// backup, prune and restore durations are data-dependent. Runner does
// not retry and does not interpret exit codes beyond non-zero being an
// error; fatality is the caller's decision.
type Runner interface {
	Run(ctx context.Context, subcommand string, args []string, timeout time.Duration) (Output, error)
}

// ProcessError reports a non-zero exit of the external tool, with a
// snippet of its stderr for operator visibility.
type ProcessError struct {
	Subcommand string
	ExitCode   int
	Stderr     string
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("restic %s exited with code %d", e.Subcommand, e.ExitCode)
	}
	return fmt.Sprintf("restic %s exited with code %d: %s", e.Subcommand, e.ExitCode, e.Stderr)
}
