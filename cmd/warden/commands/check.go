package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/policy"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate an action against the workspace policy without running it",
		Long: `Check answers the question dispatch would ask: does the workspace
policy allow this command and these file paths? Nothing is executed and
nothing is written to the audit trail. Exits non-zero on denial.`,
		RunE: runCheck,
	}

	cmd.Flags().String("command", "", "Shell command to evaluate")
	cmd.Flags().StringArray("file", nil, "File path to evaluate, repeatable")
	cmd.Flags().String("workspace", "", "Workspace root override")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if workspace, _ := cmd.Flags().GetString("workspace"); strings.TrimSpace(workspace) != "" {
		cfg.Workspace.Mode = "path"
		cfg.Workspace.Path = workspace
	}
	workspacePath, err := cfg.WorkspacePathChecked()
	if err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}

	command, _ := cmd.Flags().GetString("command")
	files, _ := cmd.Flags().GetStringArray("file")
	if strings.TrimSpace(command) == "" && len(files) == 0 {
		return fmt.Errorf("nothing to check: pass --command and/or --file")
	}

	decision := policy.NewEvaluator().Evaluate(policy.Input{
		WorkspaceRoot: workspacePath,
		Command:       command,
		Files:         files,
	})

	if !decision.Allowed {
		return fmt.Errorf("denied: %s", decision.Reason)
	}

	fmt.Println("allowed")
	return nil
}
