package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/model"
	"github.com/ppiankov/truthgate/internal/policy"
	"github.com/ppiankov/truthgate/internal/truth"
)

var (
	statusDir    string
	statusFormat string
	statusWatch  bool
)

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusDir, "dir", "C", ".", "Project directory")
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "Output format (text|json)")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Re-render whenever truth.json changes")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show onboarding and gate readiness for a project",
	RunE:  runStatus,
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// StatusView is the JSON shape printed by status.
type StatusView struct {
	StatePath string        `json:"state_path,omitempty"`
	Report    policy.Report `json:"report"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(statusDir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	out := cmd.OutOrStdout()

	snap := truth.Load(dir)
	if err := writeStatus(out, snap, statusFormat); err != nil {
		return err
	}
	if !statusWatch {
		return nil
	}

	if snap.Path == "" {
		return fmt.Errorf("no %s found from %s", filepath.Join(truth.Dir, truth.FileName), dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := truth.NewWatcher(snap.Path, func(s truth.Snapshot) {
		fmt.Fprintln(out)
		if err := writeStatus(out, s, statusFormat); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}).OnError(func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
	})

	fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("watching "+snap.Path+" (Ctrl-C to stop)"))
	return w.Run(ctx)
}

func writeStatus(w io.Writer, snap truth.Snapshot, format string) error {
	view := StatusView{StatePath: snap.Path, Report: policy.Status(snap.State)}
	if format == "json" {
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	fmt.Fprintln(w, renderStatus(view))
	return nil
}

func renderStatus(v StatusView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("truthgate status"))
	b.WriteString("\n\n")

	if v.StatePath == "" {
		b.WriteString(dimStyle.Render("No truth store found. Gates are not enforced here."))
		return b.String()
	}

	r := v.Report
	b.WriteString(labelStyle.Render("Truth store  ") + v.StatePath + "\n")
	if !r.Managed {
		b.WriteString(dimStyle.Render("Project is not managed. Gates are not enforced here."))
		return b.String()
	}

	onboarding := approvedStyle.Render("complete")
	if !r.Onboarding.Complete {
		onboarding = pendingStyle.Render(r.Onboarding.Pending)
	}
	b.WriteString(labelStyle.Render("Onboarding   ") + onboarding + "\n")

	codegen := approvedStyle.Render("ready")
	if !r.CodeGenReady {
		codegen = rejectedStyle.Render("blocked") + dimStyle.Render(" "+r.CodeGenBlock)
	}
	b.WriteString(labelStyle.Render("Code gen     ") + codegen + "\n")

	var rows []string
	for _, g := range r.Gates {
		rows = append(rows, renderGateRow(g))
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	return b.String()
}

func renderGateRow(g policy.GateReport) string {
	name := fmt.Sprintf("%-3s %-20s", g.Gate, g.Name)

	var status string
	switch g.Status {
	case model.GateApproved:
		status = approvedStyle.Render(fmt.Sprintf("%-9s", "approved"))
	case model.GateRejected:
		status = rejectedStyle.Render(fmt.Sprintf("%-9s", "rejected"))
	case model.GatePending:
		status = pendingStyle.Render(fmt.Sprintf("%-9s", "pending"))
	default:
		status = dimStyle.Render(fmt.Sprintf("%-9s", "-"))
	}

	var blockers []string
	if len(g.MissingPrerequisites) > 0 {
		ids := make([]string, len(g.MissingPrerequisites))
		for i, id := range g.MissingPrerequisites {
			ids[i] = string(id)
		}
		blockers = append(blockers, "needs "+strings.Join(ids, ", "))
	}
	if len(g.MissingRoles) > 0 {
		blockers = append(blockers, "spawn "+strings.Join(g.MissingRoles, ", "))
	}
	detail := approvedStyle.Render("ready")
	if len(blockers) > 0 {
		detail = dimStyle.Render(strings.Join(blockers, "; "))
	}

	return name + " " + status + " " + detail
}

// gateName returns the display name of a gate, or its ID when unknown.
func gateName(id model.GateID) string {
	if info, ok := gates.Lookup(id); ok {
		return info.Name
	}
	return string(id)
}
