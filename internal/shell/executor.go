package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultCommandTimeout = 60 * time.Second
	defaultOutputLimit    = 64 * 1024
)

// Output is the captured result of one command run. A non-zero exit code
// is part of the output, not an error; callers decide its significance.
type Output struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Truncated bool
	Class     string
	Duration  time.Duration
}

// Executor runs whitelisted shell commands under a scrubbed environment
// with a timeout and bounded output capture.
type Executor struct {
	timeout     time.Duration
	outputLimit int
}

// NewExecutor creates an executor. A non-positive defaultTimeout or
// outputLimit selects the built-in defaults.
func NewExecutor(defaultTimeout time.Duration, outputLimit int) *Executor {
	if defaultTimeout <= 0 {
		defaultTimeout = defaultCommandTimeout
	}
	if outputLimit <= 0 {
		outputLimit = defaultOutputLimit
	}
	return &Executor{timeout: defaultTimeout, outputLimit: outputLimit}
}

// Run executes the command in cwd. The command must match a compiled-in
// command class and must be free of shell control operators; otherwise it
// is rejected before any process is spawned. A timeout of zero selects
// the executor default; on expiry the whole process group is killed.
func (e *Executor) Run(ctx context.Context, command, cwd string, timeout time.Duration) (Output, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Output{}, &NotWhitelistedError{Command: command, Reason: "empty command"}
	}
	if reason, found := shellControlReason(command); found {
		return Output{}, &NotWhitelistedError{Command: command, Reason: reason}
	}
	class, ok := MatchCommandClass(command)
	if !ok {
		return Output{}, &NotWhitelistedError{Command: command, Reason: "no matching command class"}
	}

	if timeout <= 0 {
		timeout = e.timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	if cwd != "" {
		cmd.Dir = cwd
	}
	cmd.Env = scrubbedEnv()
	setProcGroup(cmd)

	stdout := newTailWriter(e.outputLimit)
	stderr := newTailWriter(e.outputLimit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	slog.Debug("running command", "class", class.Name, "cwd", cwd, "timeout", timeout)
	start := time.Now()
	runErr := cmd.Run()

	out := Output{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Class:     class.Name,
		Duration:  time.Since(start),
	}

	if runErr != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return out, &TimeoutError{Command: command, Timeout: timeout}
			}
			return out, fmt.Errorf("command cancelled: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("run command: %w", runErr)
	}
	return out, nil
}
