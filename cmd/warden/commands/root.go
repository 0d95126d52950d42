package commands

import (
	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/config"
)

var logLevelOverride string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "warden",
		Short:         "Warden - action governance for coding agents",
		Long:          `Warden decides whether an autonomous coding agent may run a shell command or mutate workspace files, enforcing the workspace policy with confirmation and a full audit trail.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return configureLogger(config.DefaultConfig(), logLevelOverride, false)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return configureLogger(cfg, logLevelOverride, cmd.Name() == "dispatch")
		},
	}

	cmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "Override log level (debug|info|warn|error)")

	cmd.AddCommand(
		NewInitCmd(),
		NewServeCmd(),
		NewDispatchCmd(),
		NewCheckCmd(),
		NewApprovalCmd(),
		NewStatusCmd(),
		NewVersionCmd(),
	)

	return cmd
}
