package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/hook"
	"github.com/ppiankov/truthgate/internal/model"
	"github.com/ppiankov/truthgate/internal/policy"
	"github.com/ppiankov/truthgate/internal/truth"
)

var (
	evalDir     string
	evalTool    string
	evalCommand string
	evalFile    string
	evalFormat  string
	evalCatalog string
)

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalDir, "dir", "C", ".", "Project directory to evaluate in")
	evalCmd.Flags().StringVar(&evalTool, "tool", "", "Tool name (default Bash with --command, Write with --file)")
	evalCmd.Flags().StringVar(&evalCommand, "command", "", "Shell command to check")
	evalCmd.Flags().StringVar(&evalFile, "file", "", "File path to check")
	evalCmd.Flags().StringVarP(&evalFormat, "format", "f", "text", "Output format (text|json)")
	evalCmd.Flags().StringVar(&evalCatalog, "catalog", "", "Pattern catalog YAML (overrides config)")
	evalCmd.MarkFlagsMutuallyExclusive("command", "file")
	evalCmd.MarkFlagsOneRequired("command", "file")
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Dry-run one action against a project's gates",
	Long: "Classifies a shell command or file path and evaluates it against the\n" +
		"truth store found from --dir, exactly as the hook would. Nothing is\n" +
		"executed and nothing is written to the audit log.",
	RunE: runEval,
}

// EvalResult is the JSON shape printed by eval.
type EvalResult struct {
	Action    *model.Action `json:"action"`
	Verdict   model.Verdict `json:"verdict"`
	Managed   bool          `json:"managed"`
	StatePath string        `json:"state_path,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	catalogPath := evalCatalog
	if catalogPath == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalogPath = cfg.Catalog.Path
	}

	catalog, err := gates.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(evalDir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	action, err := evalAction(evalTool, evalCommand, evalFile)
	if err != nil {
		return err
	}

	snap := truth.Load(dir)
	result := EvalResult{
		Action:    action,
		Verdict:   policy.Evaluate(action, snap.State, catalog),
		Managed:   snap.Managed(),
		StatePath: snap.Path,
	}

	return writeEval(cmd.OutOrStdout(), result, evalFormat)
}

func evalAction(tool, command, file string) (*model.Action, error) {
	if tool == "" {
		tool = hook.ToolWrite
		if command != "" {
			tool = hook.ToolBash
		}
	}
	in := &hook.Input{
		ToolName: tool,
		ToolInput: map[string]any{
			"command":       command,
			"file_path":     file,
			"notebook_path": file,
		},
	}
	action := in.Action()
	if action == nil {
		return nil, fmt.Errorf("tool %q is not gated", tool)
	}
	return action, nil
}

func writeEval(w io.Writer, r EvalResult, format string) error {
	if format == "json" {
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	v := r.Verdict
	state := r.StatePath
	if state == "" {
		state = "(none)"
	}
	fmt.Fprintf(w, "Decision: %s\n", v.Decision)
	fmt.Fprintf(w, "Policy:   %s\n", v.PolicyID)
	if v.Gate != "" {
		fmt.Fprintf(w, "Gate:     %s (%s)\n", v.Gate, gateName(v.Gate))
	}
	fmt.Fprintf(w, "State:    %s\n", state)
	if v.Reason != "" {
		fmt.Fprintf(w, "Reason:   %s\n", v.Reason)
	}
	return nil
}
