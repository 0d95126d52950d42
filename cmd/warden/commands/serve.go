package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/approval"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/confirm"
	"github.com/wardenhq/warden/internal/gateway"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/state"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Warden gateway server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	workspacePath, err := cfg.WorkspacePathChecked()
	if err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}

	// The gateway has no terminal to prompt on, so destructive actions
	// go through the durable approval queue instead.
	approvals := approval.NewService(workspacePath)
	approvals.SetDefaultTTL(time.Duration(cfg.Approvals.TTL) * time.Minute)

	facade, _, err := buildFacade(cfg, confirm.NewStoreGate(approvals))
	if err != nil {
		return err
	}
	facade.SetMetrics(metrics.NewDispatchMetrics(workspacePath))

	sweeper := approval.NewSweeper(approval.SweeperConfig{Enabled: true}, approvals)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start approval sweeper: %w", err)
	}
	defer sweeper.Stop()

	errCh := make(chan error, 1)

	gatewayServer := gateway.New(cfg.Gateway, facade)
	go func() {
		if err := gatewayServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("gateway server failed: %w", err)
		}
	}()

	stateManager := state.NewManager(workspacePath)
	if err := stateManager.SaveServerState(state.ServerState{
		Addr:      gatewayServer.Addr(),
		PID:       os.Getpid(),
		StartedAt: time.Now().UTC(),
	}); err != nil {
		slog.Warn("failed to persist server state", "error", err)
	}
	defer func() {
		if err := stateManager.ClearServerState(); err != nil {
			slog.Warn("failed to clear server state", "error", err)
		}
	}()

	fmt.Printf("Warden server running. Gateway: http://%s\nWorkspace: %s\nPress Ctrl+C to stop.\n", gatewayServer.Addr(), workspacePath)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		slog.Error("server component failed", "error", runErr)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	slog.Info("shutting down")
	if err := gatewayServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("gateway shutdown failed", "error", err)
	}

	return runErr
}
