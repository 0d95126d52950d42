package handler

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/shell"
)

func TestCommandHandler_CanHandle(t *testing.T) {
	reg := NewCommandHandler(shell.NewExecutor(0, 0))

	if !reg.CanHandle(action.Descriptor{Kind: action.KindCommand, Command: "git status"}) {
		t.Fatal("expected command descriptor to be claimed")
	}
	if reg.CanHandle(action.Descriptor{Kind: action.KindCommand, Command: "   "}) {
		t.Fatal("expected blank command to be left unclaimed")
	}
	if reg.CanHandle(action.Descriptor{Kind: action.KindEdit, Command: "git status"}) {
		t.Fatal("expected edit descriptor to be left unclaimed")
	}
}

func TestCommandHandler_RunsWhitelistedCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	dir := t.TempDir()
	reg := NewCommandHandler(shell.NewExecutor(0, 0))

	result := reg.Execute(context.Background(), action.Descriptor{
		Kind:    action.KindCommand,
		Command: "pwd",
	}, &action.ExecutionContext{WorkspaceRoot: dir})

	if !result.Success {
		t.Fatalf("Execute() failed: %s (%v)", result.Message, result.Err)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map data, got %T", result.Data)
	}
	stdout, _ := data["stdout"].(string)
	if !strings.Contains(stdout, filepath.Base(dir)) {
		t.Fatalf("expected stdout to contain workspace dir, got %q", stdout)
	}
	if code, ok := data["exit_code"].(int); !ok || code != 0 {
		t.Fatalf("expected exit_code 0, got %v", data["exit_code"])
	}
}

func TestCommandHandler_NonZeroExitIsReportedNotFailed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	reg := NewCommandHandler(shell.NewExecutor(0, 0))
	result := reg.Execute(context.Background(), action.Descriptor{
		Kind:    action.KindCommand,
		Command: "ls /definitely/not/here",
	}, &action.ExecutionContext{WorkspaceRoot: t.TempDir()})

	if !result.Success {
		t.Fatalf("expected non-zero exit to stay a success, got failure: %s", result.Message)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map data, got %T", result.Data)
	}
	code, ok := data["exit_code"].(int)
	if !ok || code == 0 {
		t.Fatalf("expected non-zero exit_code in data, got %v", data["exit_code"])
	}
	if !strings.Contains(result.Message, "exited with status") {
		t.Fatalf("expected exit status in message, got %q", result.Message)
	}
}

func TestCommandHandler_NotWhitelistedMapped(t *testing.T) {
	reg := NewCommandHandler(shell.NewExecutor(0, 0))
	result := reg.Execute(context.Background(), action.Descriptor{
		Kind:    action.KindCommand,
		Command: "rm -rf /",
	}, &action.ExecutionContext{WorkspaceRoot: t.TempDir()})

	if result.Success {
		t.Fatal("expected non-whitelisted command to fail")
	}
	if result.Code != action.CodeNotWhitelisted {
		t.Fatalf("expected code %q, got %q", action.CodeNotWhitelisted, result.Code)
	}
	if !errors.Is(result.Err, shell.ErrNotWhitelisted) {
		t.Fatalf("expected wrapped ErrNotWhitelisted, got %v", result.Err)
	}
}

func TestCommandHandler_TimeoutMapped(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	reg := NewCommandHandler(shell.NewExecutor(150*time.Millisecond, 0))
	result := reg.Execute(context.Background(), action.Descriptor{
		Kind:    action.KindCommand,
		Command: "tail -f /dev/null",
	}, &action.ExecutionContext{WorkspaceRoot: t.TempDir()})

	if result.Success {
		t.Fatal("expected timed-out command to fail")
	}
	if result.Code != action.CodeTimeout {
		t.Fatalf("expected code %q, got %q", action.CodeTimeout, result.Code)
	}
	if !errors.Is(result.Err, shell.ErrTimeout) {
		t.Fatalf("expected wrapped ErrTimeout, got %v", result.Err)
	}
	if !strings.Contains(result.Message, "unknown") {
		t.Fatalf("expected message to flag unknown side effects, got %q", result.Message)
	}
}
