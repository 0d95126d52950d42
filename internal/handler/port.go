package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/shell"
)

const portProbeTimeout = 10 * time.Second

// NewPortHandler claims port descriptors. Op "status" reports the pids
// listening on the port, op "kill" terminates them. Listener discovery
// goes through the executor so it is subject to the same whitelist and
// scrubbed environment as any other command.
func NewPortHandler(executor *shell.Executor) Registration {
	return Registration{
		ID:          "port",
		Priority:    70,
		Destructive: true,
		CanHandle: func(desc action.Descriptor) bool {
			return desc.Kind == action.KindPort && desc.Port > 0
		},
		Execute: func(ctx context.Context, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result {
			op := strings.TrimSpace(desc.Op)
			if op == "" {
				op = "status"
			}
			if op != "status" && op != "kill" {
				return action.Failed(action.CodeError, fmt.Sprintf("unsupported port operation %q", op), nil)
			}

			pids, err := listeningPIDs(ctx, executor, desc.Port)
			if err != nil {
				return action.Failed(action.CodeError, fmt.Sprintf("could not probe port %d", desc.Port), err)
			}
			execCtx.Progress.Publish("port.status", map[string]any{
				"port": desc.Port,
				"op":   op,
				"pids": pids,
			})

			if len(pids) == 0 {
				return action.Succeeded(
					fmt.Sprintf("no process is listening on port %d", desc.Port),
					map[string]any{"port": desc.Port, "pids": []int{}})
			}
			if op == "status" {
				return action.Succeeded(
					fmt.Sprintf("%d process(es) listening on port %d", len(pids), desc.Port),
					map[string]any{"port": desc.Port, "pids": pids})
			}

			killed := make([]int, 0, len(pids))
			for _, pid := range pids {
				if err := terminateProcess(pid); err != nil {
					return action.Result{
						Success: false,
						Code:    action.CodeError,
						Message: fmt.Sprintf("terminated %d of %d process(es) on port %d", len(killed), len(pids), desc.Port),
						Data:    map[string]any{"port": desc.Port, "killed": killed, "failed_pid": pid},
						Err:     fmt.Errorf("terminate pid %d: %w", pid, err),
					}
				}
				killed = append(killed, pid)
			}
			return action.Succeeded(
				fmt.Sprintf("terminated %d process(es) on port %d", len(killed), desc.Port),
				map[string]any{"port": desc.Port, "killed": killed})
		},
	}
}

// listeningPIDs asks lsof for the pids bound to the port. lsof exits
// non-zero when nothing matches; that is an empty answer, not a
// failure.
func listeningPIDs(ctx context.Context, executor *shell.Executor, port int) ([]int, error) {
	output, err := executor.Run(ctx, fmt.Sprintf("lsof -ti tcp:%d", port), "", portProbeTimeout)
	if err != nil {
		return nil, err
	}

	var pids []int
	for _, line := range strings.Split(output.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pid, convErr := strconv.Atoi(line)
		if convErr != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
