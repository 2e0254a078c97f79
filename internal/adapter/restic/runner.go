package restic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/semmidev/custodia/internal/config"
	"github.com/semmidev/custodia/internal/domain"
)

// stderrSnippetLimit caps the diagnostic text carried inside a
// ProcessError. The full stderr stays available on the Output.
const stderrSnippetLimit = 512

// ExecRunner invokes the restic binary, one synchronous subprocess per
// call. The repository location and password file reference travel only
// through the environment, never through arguments or logs.
type ExecRunner struct {
	binary string
	env    []string
}

func NewExecRunner(cfg *config.RepositoryConfig) *ExecRunner {
	binary := cfg.Binary
	if binary == "" {
		binary = "restic"
	}

	env := append(os.Environ(),
		fmt.Sprintf("RESTIC_REPOSITORY=%s", cfg.Location),
		fmt.Sprintf("RESTIC_PASSWORD_FILE=%s", cfg.PasswordFile),
	)
	if cfg.CacheDir != "" {
		env = append(env, fmt.Sprintf("RESTIC_CACHE_DIR=%s", cfg.CacheDir))
	}

	return &ExecRunner{binary: binary, env: env}
}

// Run executes one restic subcommand. A zero timeout means unbounded.
// On non-zero exit the captured Output is returned alongside a
// *domain.ProcessError; interpreting the failure is the caller's job.
func (r *ExecRunner) Run(ctx context.Context, subcommand string, args []string, timeout time.Duration) (domain.Output, error) {
	if subcommand == "" {
		return domain.Output{}, fmt.Errorf("subcommand must not be empty")
	}
	for i, arg := range args {
		if arg == "" {
			return domain.Output{}, fmt.Errorf("argument %d of %s must not be empty", i, subcommand)
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, append([]string{subcommand}, args...)...)
	cmd.Env = r.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := domain.Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, &domain.ProcessError{
				Subcommand: subcommand,
				ExitCode:   out.ExitCode,
				Stderr:     stderrSnippet(out.Stderr),
			}
		}
		return out, fmt.Errorf("run %s %s: %w", r.binary, subcommand, err)
	}

	return out, nil
}

func stderrSnippet(stderr string) string {
	snippet := strings.TrimSpace(stderr)
	if len(snippet) > stderrSnippetLimit {
		snippet = snippet[:stderrSnippetLimit]
	}
	return snippet
}
