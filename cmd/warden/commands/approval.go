package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/wardenhq/warden/internal/approval"
)

func NewApprovalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approval",
		Short: "Manage approval requests for destructive actions",
	}

	cmd.AddCommand(
		newApprovalListCmd(),
		newApprovalApproveCmd(),
		newApprovalRejectCmd(),
	)

	return cmd
}

func newApprovalListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval requests",
		RunE:  runApprovalList,
	}
	cmd.Flags().Bool("all", false, "Include decided and expired requests")
	return cmd
}

func newApprovalApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve an approval request",
		Args:  cobra.ExactArgs(1),
		RunE:  runApprovalApprove,
	}
	cmd.Flags().String("by", "", "Decision maker")
	cmd.Flags().String("note", "", "Decision note")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newApprovalRejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject an approval request",
		Args:  cobra.ExactArgs(1),
		RunE:  runApprovalReject,
	}
	cmd.Flags().String("by", "", "Decision maker")
	cmd.Flags().String("note", "", "Decision note")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func runApprovalList(cmd *cobra.Command, args []string) error {
	svc, err := loadApprovalService()
	if err != nil {
		return err
	}

	if _, err := svc.ExpirePending(); err != nil {
		return err
	}

	query := approval.Query{Status: approval.StatusPending}
	if all, _ := cmd.Flags().GetBool("all"); all {
		query.Status = ""
	}

	requests, err := svc.List(query)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Println("No approval requests.")
		return nil
	}

	renderApprovalTable(requests)
	return nil
}

func renderApprovalTable(requests []approval.Request) {
	var (
		headerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#8E4EC6")). // Purple
				Padding(0, 1).
				MarginBottom(1)

		// Column Widths
		wID        = 6
		wAction    = 14
		wSummary   = 38
		wRequested = 20
		wStatus    = 10

		colHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8E4EC6")).
				Bold(true).
				MarginRight(1)

		// Cell Styles (with fixed widths for alignment)
		idStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(wID).
			MarginRight(1)

		actionStyle = lipgloss.NewStyle().
				Width(wAction).
				MarginRight(1)

		summaryStyle = lipgloss.NewStyle().
				Width(wSummary).
				MarginRight(1)

		requestedStyle = lipgloss.NewStyle().
				Width(wRequested).
				MarginRight(1)

		statusStyleBase = lipgloss.NewStyle().
				Width(wStatus).
				MarginRight(1)

		pendingColor  = lipgloss.Color("#D4A017") // Goldenrod
		approvedColor = lipgloss.Color("#2E8B57") // SeaGreen
		rejectedColor = lipgloss.Color("#CD5C5C") // IndianRed
		expiredColor  = lipgloss.Color("241")     // Dark Gray
	)

	fmt.Println(headerStyle.Render("Approval Requests"))

	// Render Headers
	headers := lipgloss.JoinHorizontal(lipgloss.Top,
		colHeaderStyle.Width(wID).Render("ID"),
		colHeaderStyle.Width(wAction).Render("ACTION"),
		colHeaderStyle.Width(wSummary).Render("SUMMARY"),
		colHeaderStyle.Width(wRequested).Render("REQUESTED"),
		colHeaderStyle.Width(wStatus).Render("STATUS"),
	)
	fmt.Printf("  %s\n", headers)

	// Render Separator
	// Note: We use the same widths and margins to ensure alignment
	sepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
	separator := lipgloss.JoinHorizontal(lipgloss.Top,
		sepStyle.Render(strings.Repeat("─", wID)),
		sepStyle.Render(strings.Repeat("─", wAction)),
		sepStyle.Render(strings.Repeat("─", wSummary)),
		sepStyle.Render(strings.Repeat("─", wRequested)),
		sepStyle.Render(strings.Repeat("─", wStatus)),
	)
	fmt.Printf("  %s\n", separator)

	for _, req := range requests {
		summary := req.Summary
		if summary == "" {
			summary = req.PayloadJSON
		}

		sColor := pendingColor
		switch req.Status {
		case approval.StatusApproved:
			sColor = approvedColor
		case approval.StatusRejected:
			sColor = rejectedColor
		case approval.StatusExpired:
			sColor = expiredColor
		}

		// Render Row
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			idStyle.Render(req.ID),
			actionStyle.Render(truncate(req.Action, wAction)),
			summaryStyle.Render(truncate(summary, wSummary)),
			requestedStyle.Render(req.RequestedAt.Local().Format("2006-01-02 15:04:05")),
			statusStyleBase.Foreground(sColor).Render(string(req.Status)),
		)

		fmt.Printf("  %s\n", row)
	}

	fmt.Println() // Bottom spacing
}

func runApprovalApprove(cmd *cobra.Command, args []string) error {
	return runApprovalDecision(cmd, args[0], true)
}

func runApprovalReject(cmd *cobra.Command, args []string) error {
	return runApprovalDecision(cmd, args[0], false)
}

func runApprovalDecision(cmd *cobra.Command, id string, approve bool) error {
	svc, err := loadApprovalService()
	if err != nil {
		return err
	}

	by, _ := cmd.Flags().GetString("by")
	note, _ := cmd.Flags().GetString("note")
	if strings.TrimSpace(by) == "" {
		return fmt.Errorf("--by is required")
	}

	decision := approval.DecisionInput{
		DecidedBy: strings.TrimSpace(by),
		Note:      strings.TrimSpace(note),
	}

	if approve {
		if _, err := svc.Approve(id, decision); err != nil {
			return err
		}
		fmt.Printf("Approval %s approved.\n", id)
		return nil
	}

	if _, err := svc.Reject(id, decision); err != nil {
		return err
	}
	fmt.Printf("Approval %s rejected.\n", id)
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
