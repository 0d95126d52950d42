package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/shell"
)

// toolInstallers maps a tool name to the command line that installs
// it. Every entry must start with a whitelisted package manager so the
// executor accepts it; the table is compiled in and never read from
// the workspace.
var toolInstallers = map[string]string{
	"typescript":  "npm install -g typescript",
	"prettier":    "npm install -g prettier",
	"eslint":      "npm install -g eslint",
	"vitest":      "npm install -g vitest",
	"gopls":       "go install golang.org/x/tools/gopls@latest",
	"staticcheck": "go install honnef.co/go/tools/cmd/staticcheck@latest",
	"ripgrep":     "cargo install ripgrep",
	"black":       "pip install black",
	"pytest":      "pip install pytest",
	"tox":         "pip install tox",
}

// KnownTools returns the installable tool names, sorted.
func KnownTools() []string {
	names := make([]string, 0, len(toolInstallers))
	for name := range toolInstallers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewToolInstallHandler claims tool.install descriptors and runs the
// compiled install command for the named tool through the executor.
func NewToolInstallHandler(executor *shell.Executor) Registration {
	return Registration{
		ID:          "tool.install",
		Priority:    60,
		Destructive: true,
		CanHandle: func(desc action.Descriptor) bool {
			return desc.Kind == action.KindToolInstall && strings.TrimSpace(desc.Tool) != ""
		},
		Execute: func(ctx context.Context, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result {
			tool := strings.ToLower(strings.TrimSpace(desc.Tool))
			install, ok := toolInstallers[tool]
			if !ok {
				return action.Failed(action.CodeError,
					fmt.Sprintf("no installer known for tool %q", tool), nil)
			}

			execCtx.Progress.Publish("tool.install", map[string]any{
				"tool":    tool,
				"command": install,
			})

			output, err := executor.Run(ctx, install, execCtx.WorkspaceRoot, 0)
			if err != nil {
				if errors.Is(err, shell.ErrTimeout) {
					return action.Failed(action.CodeTimeout,
						fmt.Sprintf("install %s timed out", tool), err)
				}
				return action.Failed(action.CodeError,
					fmt.Sprintf("install %s did not run", tool), err)
			}

			data := map[string]any{
				"tool":      tool,
				"command":   install,
				"exit_code": output.ExitCode,
				"stdout":    output.Stdout,
				"stderr":    output.Stderr,
			}
			if output.ExitCode != 0 {
				return action.Result{
					Success: false,
					Code:    action.CodeError,
					Message: fmt.Sprintf("install %s exited with status %d", tool, output.ExitCode),
					Data:    data,
				}
			}
			return action.Succeeded(fmt.Sprintf("installed %s", tool), data)
		},
	}
}
