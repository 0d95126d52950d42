package handler

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/shell"
)

func TestToolInstallHandler_CanHandle(t *testing.T) {
	reg := NewToolInstallHandler(shell.NewExecutor(0, 0))

	if !reg.CanHandle(action.Descriptor{Kind: action.KindToolInstall, Tool: "ripgrep"}) {
		t.Fatal("expected tool.install descriptor to be claimed")
	}
	if reg.CanHandle(action.Descriptor{Kind: action.KindToolInstall, Tool: "  "}) {
		t.Fatal("expected blank tool to be left unclaimed")
	}
	if reg.CanHandle(action.Descriptor{Kind: action.KindCommand, Tool: "ripgrep"}) {
		t.Fatal("expected command descriptor to be left unclaimed")
	}
	if !reg.Destructive {
		t.Fatal("expected tool.install handler to be destructive")
	}
}

func TestToolInstallers_AllPassTheWhitelist(t *testing.T) {
	for tool, install := range toolInstallers {
		if _, ok := shell.MatchCommandClass(install); !ok {
			t.Fatalf("installer for %s is not whitelisted: %q", tool, install)
		}
	}
}

func TestKnownTools_Sorted(t *testing.T) {
	names := KnownTools()
	if len(names) != len(toolInstallers) {
		t.Fatalf("expected %d tools, got %d", len(toolInstallers), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("expected sorted tool names, got %v", names)
	}
}

func TestToolInstallHandler_UnknownTool(t *testing.T) {
	reg := NewToolInstallHandler(shell.NewExecutor(0, 0))
	result := reg.Execute(context.Background(), action.Descriptor{
		Kind: action.KindToolInstall,
		Tool: "left-pad",
	}, &action.ExecutionContext{})

	if result.Success {
		t.Fatal("expected unknown tool to fail")
	}
	if !strings.Contains(result.Message, `no installer known for tool "left-pad"`) {
		t.Fatalf("expected unknown-tool message, got %q", result.Message)
	}
}

func TestToolInstallHandler_RunsInstaller(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	// Temporary entry so the test exercises the full path without
	// touching a real package manager.
	toolInstallers["sh-locator"] = "which sh"
	defer delete(toolInstallers, "sh-locator")

	progress := action.NewProgressQueue(0)
	reg := NewToolInstallHandler(shell.NewExecutor(0, 0))
	result := reg.Execute(context.Background(), action.Descriptor{
		Kind: action.KindToolInstall,
		Tool: "SH-Locator",
	}, &action.ExecutionContext{WorkspaceRoot: t.TempDir(), Progress: progress})

	if !result.Success {
		t.Fatalf("Execute() failed: %s (%v)", result.Message, result.Err)
	}
	if result.Message != "installed sh-locator" {
		t.Fatalf("expected install message, got %q", result.Message)
	}

	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map data, got %T", result.Data)
	}
	if data["command"] != "which sh" {
		t.Fatalf("expected install command in data, got %v", data["command"])
	}

	events := progress.Drain()
	if len(events) != 1 || events[0].Type != "tool.install" {
		t.Fatalf("expected one tool.install event, got %v", events)
	}
}
