package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/confirm"
	"github.com/wardenhq/warden/internal/metrics"
)

func NewDispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch a single action through the governance pipeline",
		Long: `Dispatch runs one action the way the gateway would: policy check,
handler selection, confirmation for destructive handlers, audit trail.
Destructive actions prompt on the terminal unless --yes is given.`,
		RunE: runDispatch,
	}

	cmd.Flags().String("kind", "", "Action kind: command, edit, port, tool.install")
	cmd.Flags().String("command", "", "Shell command to run (kind=command)")
	cmd.Flags().StringArray("file", nil, "File to annotate, repeatable (kind=edit)")
	cmd.Flags().String("note", "", "Annotation text (kind=edit)")
	cmd.Flags().Int("port", 0, "TCP port to inspect (kind=port)")
	cmd.Flags().String("op", "", "Port operation: status or kill (kind=port)")
	cmd.Flags().String("tool", "", "Tool name to install (kind=tool.install)")
	cmd.Flags().String("workspace", "", "Workspace root override")
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt for destructive actions")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runDispatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if workspace, _ := cmd.Flags().GetString("workspace"); strings.TrimSpace(workspace) != "" {
		cfg.Workspace.Mode = "path"
		cfg.Workspace.Path = workspace
	}

	var gate confirm.Gate = confirm.NewTerminalGate(os.Stdin, os.Stdout)
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		gate = confirm.AutoGate{}
	}

	facade, workspacePath, err := buildFacade(cfg, gate)
	if err != nil {
		return err
	}
	facade.SetMetrics(metrics.NewDispatchMetrics(workspacePath))

	kind, _ := cmd.Flags().GetString("kind")
	command, _ := cmd.Flags().GetString("command")
	files, _ := cmd.Flags().GetStringArray("file")
	note, _ := cmd.Flags().GetString("note")
	port, _ := cmd.Flags().GetInt("port")
	op, _ := cmd.Flags().GetString("op")
	tool, _ := cmd.Flags().GetString("tool")

	desc := action.Descriptor{
		Kind:    action.Kind(strings.TrimSpace(kind)),
		Command: command,
		Files:   files,
		Note:    note,
		Port:    port,
		Op:      op,
		Tool:    tool,
	}

	result, events := facade.Dispatch(ctx, desc)

	for _, event := range events {
		fmt.Printf("[%s] %v\n", event.Type, event.Data)
	}

	if !result.Success {
		printResultOutput(result.Data)
		return fmt.Errorf("%s: %s", result.Code, result.Message)
	}

	fmt.Println(result.Message)
	printResultOutput(result.Data)
	return nil
}

// printResultOutput surfaces captured command output when the handler
// returned any. Other data shapes are left to the audit trail.
func printResultOutput(data any) {
	fields, ok := data.(map[string]any)
	if !ok {
		return
	}
	if stdout, ok := fields["stdout"].(string); ok && stdout != "" {
		fmt.Print(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			fmt.Println()
		}
	}
	if stderr, ok := fields["stderr"].(string); ok && stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
		if !strings.HasSuffix(stderr, "\n") {
			fmt.Fprintln(os.Stderr)
		}
	}
}
