package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/shell"
)

// NewCommandHandler claims command descriptors and runs them through
// the sandboxed executor. A non-zero exit code is reported in the
// result data, not as a failure; the caller decides its significance.
func NewCommandHandler(executor *shell.Executor) Registration {
	return Registration{
		ID:       "command",
		Priority: 90,
		CanHandle: func(desc action.Descriptor) bool {
			return desc.Kind == action.KindCommand && strings.TrimSpace(desc.Command) != ""
		},
		Execute: func(ctx context.Context, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result {
			output, err := executor.Run(ctx, desc.Command, execCtx.WorkspaceRoot, 0)
			if err != nil {
				var notAllowed *shell.NotWhitelistedError
				if errors.As(err, &notAllowed) {
					return action.Failed(action.CodeNotWhitelisted,
						fmt.Sprintf("command not whitelisted: %s", notAllowed.Reason), err)
				}
				var timedOut *shell.TimeoutError
				if errors.As(err, &timedOut) {
					return action.Failed(action.CodeTimeout,
						fmt.Sprintf("command killed after %s; its side effects are unknown", timedOut.Timeout), err)
				}
				return action.Failed(action.CodeError, "command did not run", err)
			}

			data := map[string]any{
				"exit_code":   output.ExitCode,
				"stdout":      output.Stdout,
				"stderr":      output.Stderr,
				"class":       output.Class,
				"truncated":   output.Truncated,
				"duration_ms": output.Duration.Milliseconds(),
			}
			message := "command completed"
			if output.ExitCode != 0 {
				message = fmt.Sprintf("command exited with status %d", output.ExitCode)
			}
			return action.Succeeded(message, data)
		},
	}
}
