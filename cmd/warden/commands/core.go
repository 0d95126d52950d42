package commands

import (
	"fmt"
	"time"

	"github.com/wardenhq/warden/internal/approval"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/confirm"
	"github.com/wardenhq/warden/internal/dispatch"
	"github.com/wardenhq/warden/internal/edit"
	"github.com/wardenhq/warden/internal/handler"
	"github.com/wardenhq/warden/internal/policy"
	"github.com/wardenhq/warden/internal/shell"
)

// buildFacade wires the full dispatch pipeline from a loaded config:
// the default handler set, the policy evaluator, and the workspace
// root. The gate decides how destructive actions get confirmed, so
// serve and dispatch pass different ones.
func buildFacade(cfg *config.Config, gate confirm.Gate) (*dispatch.Facade, string, error) {
	workspacePath, err := cfg.WorkspacePathChecked()
	if err != nil {
		return nil, "", fmt.Errorf("invalid workspace: %w", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, "", err
	}

	return dispatch.New(policy.NewEvaluator(), registry, gate, workspacePath), workspacePath, nil
}

// buildRegistry registers the default handlers: one shell executor
// shared by the command, port, and tool handlers, and the edit applier.
func buildRegistry(cfg *config.Config) (*handler.Registry, error) {
	executor := shell.NewExecutor(time.Duration(cfg.Exec.Timeout)*time.Second, cfg.Exec.OutputLimit)

	registry := handler.NewRegistry()
	for _, reg := range []handler.Registration{
		handler.NewCommandHandler(executor),
		handler.NewEditHandler(edit.NewApplier()),
		handler.NewPortHandler(executor),
		handler.NewToolInstallHandler(executor),
	} {
		if err := registry.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register handler %s: %w", reg.ID, err)
		}
	}
	return registry, nil
}

func loadApprovalService() (*approval.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	workspacePath, err := cfg.WorkspacePathChecked()
	if err != nil {
		return nil, fmt.Errorf("invalid workspace: %w", err)
	}
	svc := approval.NewService(workspacePath)
	svc.SetDefaultTTL(time.Duration(cfg.Approvals.TTL) * time.Minute)
	return svc, nil
}
