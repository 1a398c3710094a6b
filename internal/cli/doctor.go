package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthgate/internal/audit"
	"github.com/ppiankov/truthgate/internal/config"
	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/truth"
)

var doctorDir string

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVarP(&doctorDir, "dir", "C", ".", "Project directory to diagnose")
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check hook installation and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(doctorDir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	checks := collectChecks(dir, configPath)
	if !printChecks(cmd.OutOrStdout(), checks) {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

func collectChecks(dir, cfgPath string) []checkResult {
	var checks []checkResult

	// 1. Binary location and version.
	execPath, _ := os.Executable()
	if execPath != "" {
		checks = append(checks, checkResult{
			label:  "truthgate binary",
			ok:     true,
			detail: fmt.Sprintf("%s (v%s)", execPath, version),
		})
	} else {
		checks = append(checks, checkResult{
			label:  "truthgate binary",
			ok:     false,
			detail: "cannot determine executable path",
		})
	}

	// 2. Config. A broken config makes the hook allow everything.
	cfg, err := config.Load(cfgPath)
	if err != nil {
		checks = append(checks, checkResult{
			label:  "config",
			ok:     false,
			detail: err.Error(),
			fix:    "fix or remove the config file",
		})
		cfg = config.Default()
	} else {
		detail := "defaults"
		if cfgPath == "" {
			cfgPath = config.DefaultPath()
		}
		if _, err := os.Stat(cfgPath); err == nil {
			detail = cfgPath
		}
		if cfg.Disabled {
			detail += " (disabled)"
		}
		checks = append(checks, checkResult{label: "config", ok: !cfg.Disabled, detail: detail, fix: "set disabled: false"})
	}

	// 3. Pattern catalog.
	if catalog, err := gates.LoadCatalog(cfg.Catalog.Path); err != nil {
		checks = append(checks, checkResult{
			label:  "catalog",
			ok:     false,
			detail: err.Error(),
			fix:    "fix " + cfg.Catalog.Path,
		})
	} else {
		raw := catalog.Raw()
		checks = append(checks, checkResult{
			label:  "catalog",
			ok:     true,
			detail: fmt.Sprintf("%d command gates, %d file gates", len(raw.Commands), len(raw.Files)),
		})
	}

	// 4. Truth store.
	snap := truth.Load(dir)
	switch {
	case snap.Path == "":
		checks = append(checks, checkResult{
			label:  "truth store",
			ok:     false,
			detail: "not found; gates are not enforced",
			fix:    "create .truth/truth.json at the project root",
		})
	case !snap.Managed():
		checks = append(checks, checkResult{
			label:  "truth store",
			ok:     false,
			detail: snap.Path + " has no onboarding, gates or agent_spawns",
		})
	default:
		checks = append(checks, checkResult{label: "truth store", ok: true, detail: snap.Path})
	}

	// 5. Hook registration.
	checks = append(checks, hookCheck(dir))

	// 6. Audit chain.
	if cfg.Audit.Path != "" {
		if _, err := os.Stat(cfg.Audit.Path); err != nil {
			checks = append(checks, checkResult{label: "audit log", ok: true, detail: cfg.Audit.Path + " (not yet written)"})
		} else if r := audit.Verify(cfg.Audit.Path); r.Valid {
			checks = append(checks, checkResult{label: "audit log", ok: true, detail: fmt.Sprintf("%d entries verified", r.Lines)})
		} else {
			checks = append(checks, checkResult{
				label:  "audit log",
				ok:     false,
				detail: fmt.Sprintf("chain broken at line %d", r.ErrorLine),
				fix:    "truthgate audit verify",
			})
		}
	}

	return checks
}

// hookCheck looks for the hook in the project settings, then the user's.
func hookCheck(dir string) checkResult {
	candidates := []string{filepath.Join(dir, ".claude", "settings.json")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".claude", "settings.json"))
	}
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if settingsHaveHook(data) {
			return checkResult{label: "PreToolUse hook", ok: true, detail: p}
		}
	}
	return checkResult{
		label:  "PreToolUse hook",
		ok:     false,
		detail: "not registered",
		fix:    "truthgate install",
	}
}

func settingsHaveHook(data []byte) bool {
	var settings struct {
		Hooks map[string][]any `json:"hooks"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return false
	}
	for _, e := range settings.Hooks["PreToolUse"] {
		if runsTruthgate(e, "truthgate hook") {
			return true
		}
	}
	return false
}

// printChecks writes one line per check and reports whether all passed.
func printChecks(w io.Writer, checks []checkResult) bool {
	hasFailures := false
	for _, c := range checks {
		mark := "\u2713" // ✓
		if !c.ok {
			mark = "\u2717" // ✗
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	if hasFailures {
		fmt.Fprintln(w, "Some checks failed. Run the suggested commands to fix.")
		return false
	}
	fmt.Fprintln(w, "All checks passed.")
	return true
}
