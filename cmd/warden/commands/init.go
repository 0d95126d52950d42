package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/policy"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize Warden configuration and workspace policy",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.ConfigPath()

	cfg := config.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", config.ConfigDir(), err)
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	workspacePath, err := cfg.WorkspacePathChecked()
	if err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}
	if err := os.MkdirAll(workspacePath, 0755); err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", workspacePath, err)
	}

	// Without a policy document every action is denied, so init seeds a
	// conservative starter unless the workspace already has one.
	policyPath := filepath.Join(workspacePath, policy.DocumentFileName)
	policyCreated := false
	if _, err := os.Stat(policyPath); os.IsNotExist(err) {
		if err := writeStarterPolicy(policyPath); err != nil {
			return fmt.Errorf("failed to write starter policy: %w", err)
		}
		policyCreated = true
	}

	fmt.Printf("Warden initialized!\n")
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("Workspace: %s\n", workspacePath)
	if policyCreated {
		fmt.Printf("Policy: %s (starter)\n", policyPath)
	} else {
		fmt.Printf("Policy: %s (existing, kept)\n", policyPath)
	}
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("1. Review %s and adjust the allow/deny lists\n", policyPath)
	fmt.Printf("2. Run 'warden check --command \"go test ./...\"' to try the policy\n")
	fmt.Printf("3. Run 'warden serve' for the gateway, or 'warden dispatch' for one-shot actions\n")

	return nil
}

func writeStarterPolicy(path string) error {
	starter := policy.Document{
		Allow: policy.AllowRules{
			Commands: []string{"git", "go", "npm", "ls", "cat", "pwd", "echo", "grep", "which"},
		},
		Deny: policy.DenyRules{
			Commands: []string{"rm -rf", "git push --force"},
		},
	}

	data, err := json.MarshalIndent(starter, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
