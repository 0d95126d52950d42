package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/approval"
	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/handler"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/policy"
	"github.com/wardenhq/warden/internal/state"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Warden configuration status",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	workspacePath, err := cfg.WorkspacePathChecked()
	if err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}

	fmt.Println("=== Warden Status ===")
	fmt.Println()

	fmt.Printf("Config: %s\n", config.ConfigPath())
	if _, err := os.Stat(config.ConfigPath()); err == nil {
		fmt.Println("  Status: OK")
	} else {
		fmt.Println("  Status: Not found (run 'warden init')")
	}

	fmt.Printf("\nWorkspace: %s\n", workspacePath)
	if _, err := os.Stat(workspacePath); err == nil {
		fmt.Println("  Status: OK")
	} else {
		fmt.Println("  Status: Not found")
	}
	workspaceMode := strings.TrimSpace(cfg.Workspace.Mode)
	if workspaceMode == "" {
		workspaceMode = "default"
	}
	fmt.Printf("  Mode: %s\n", workspaceMode)

	fmt.Printf("\nPolicy: %s\n", filepath.Join(workspacePath, policy.DocumentFileName))
	if doc, err := policy.LoadDocument(workspacePath); err == nil {
		fmt.Println("  Status: OK")
		fmt.Printf("  Allowed commands: %d\n", len(doc.Allow.Commands))
		fmt.Printf("  Allowed paths: %d\n", len(doc.Allow.Paths))
		fmt.Printf("  Denied commands: %d\n", len(doc.Deny.Commands))
	} else {
		fmt.Printf("  Status: unusable, all actions denied (%v)\n", err)
	}

	fmt.Println("\nHandlers:")
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	for _, reg := range registry.List() {
		line := fmt.Sprintf("  %s: priority %d", reg.ID, reg.Priority)
		if reg.Destructive {
			line += " (requires confirmation)"
		}
		fmt.Println(line)
	}
	fmt.Printf("  Known tools: %s\n", strings.Join(handler.KnownTools(), ", "))

	fmt.Println("\nApprovals:")
	pending, err := approval.NewService(workspacePath).List(approval.Query{Status: approval.StatusPending})
	if err == nil {
		fmt.Printf("  Pending: %d\n", len(pending))
	} else {
		fmt.Printf("  Status: unavailable (%v)\n", err)
	}

	fmt.Println("\nGateway:")
	fmt.Printf("  Address: %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	if cfg.Gateway.Token != "" {
		fmt.Println("  Auth:    token configured")
	} else {
		fmt.Println("  Auth:    no token (open)")
	}
	serverState, err := state.NewManager(workspacePath).LoadServerState()
	if err == nil && serverState.Addr != "" {
		fmt.Printf("  Server:  running at %s (pid %d, since %s)\n",
			serverState.Addr, serverState.PID, serverState.StartedAt.Format("2006-01-02 15:04:05 MST"))
	} else {
		fmt.Println("  Server:  not running")
	}

	fmt.Println("\nDispatch Metrics:")
	if snap, err := metrics.ReadDispatchSnapshot(workspacePath); err != nil {
		fmt.Printf("  Status: unavailable (%v)\n", err)
	} else if !snap.HasData() {
		fmt.Println("  no dispatch data yet")
	} else {
		d := snap.Dispatch
		fmt.Printf("  dispatch_total=%d completed=%d denied=%d unclaimed=%d failed=%d\n",
			d.Total, d.Completed, d.Denied, d.Unclaimed, d.Failed)
		fmt.Printf("  denial_ratio=%.3f failure_ratio=%.3f\n", d.DenialRatio(), d.FailureRatio())
		fmt.Printf("  avg_latency_ms=%.1f max_latency_ms=%d p95_proxy_latency_ms=%d\n",
			d.AvgLatencyMs(), d.MaxLatencyMs, d.P95ProxyLatencyMs)
	}

	fmt.Println("\nAudit:")
	auditPath := audit.NewWriter(workspacePath).Path()
	fmt.Printf("  Trail: %s\n", auditPath)
	if info, err := os.Stat(auditPath); err == nil {
		fmt.Printf("  Size: %d bytes\n", info.Size())
	} else {
		fmt.Println("  Size: empty (no actions recorded)")
	}

	return nil
}
