package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// hookMatcher selects the tools the hook gates.
const hookMatcher = "Bash|Write|Edit|MultiEdit|NotebookEdit"

var (
	installDir     string
	installUser    bool
	installCommand string
	installPrint   bool
	installForce   bool
)

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().StringVarP(&installDir, "dir", "C", ".", "Project whose .claude/settings.json is updated")
	installCmd.Flags().BoolVar(&installUser, "user", false, "Update ~/.claude/settings.json instead of the project file")
	installCmd.Flags().StringVar(&installCommand, "command", "truthgate hook", "Command the host runs for each tool call")
	installCmd.Flags().BoolVar(&installPrint, "print", false, "Print the merged settings instead of writing them")
	installCmd.Flags().BoolVar(&installForce, "force", false, "Replace existing truthgate hook entries")
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the PreToolUse hook in Claude settings",
	Long: "Adds a PreToolUse hook entry that runs truthgate for every Bash, Write,\n" +
		"Edit, MultiEdit and NotebookEdit call. Other settings are preserved.\n" +
		"Running it twice is a no-op; --force replaces earlier truthgate entries.",
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read settings: %w", err)
	}

	merged, changed, err := mergeHookSettings(existing, installCommand, installForce)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if installPrint {
		fmt.Fprint(out, string(merged))
		return nil
	}
	if !changed {
		fmt.Fprintf(out, "Hook already installed in %s (use --force to replace).\n", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := os.WriteFile(path, merged, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	fmt.Fprintf(out, "Installed PreToolUse hook in %s\n", path)
	fmt.Fprintf(out, "  matcher: %s\n", hookMatcher)
	fmt.Fprintf(out, "  command: %s\n", installCommand)
	return nil
}

func settingsPath() (string, error) {
	if installUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, ".claude", "settings.json"), nil
	}
	dir, err := filepath.Abs(installDir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	return filepath.Join(dir, ".claude", "settings.json"), nil
}

// mergeHookSettings adds the truthgate PreToolUse entry to a settings
// document, keeping every other key. It reports whether anything changed.
func mergeHookSettings(existing []byte, command string, force bool) ([]byte, bool, error) {
	settings := map[string]any{}
	if len(bytes.TrimSpace(existing)) > 0 {
		if err := json.Unmarshal(existing, &settings); err != nil {
			return nil, false, fmt.Errorf("parse settings: %w", err)
		}
	}

	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		if settings["hooks"] != nil {
			return nil, false, fmt.Errorf("hooks is not an object")
		}
		hooks = map[string]any{}
	}

	var entries []any
	if raw, present := hooks["PreToolUse"]; present && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, false, fmt.Errorf("hooks.PreToolUse is not a list")
		}
		entries = list
	}

	kept := make([]any, 0, len(entries)+1)
	for _, e := range entries {
		if runsTruthgate(e, command) {
			if !force {
				out, err := marshalSettings(settings)
				return out, false, err
			}
			continue
		}
		kept = append(kept, e)
	}

	kept = append(kept, map[string]any{
		"matcher": hookMatcher,
		"hooks": []any{
			map[string]any{"type": "command", "command": command},
		},
	})
	hooks["PreToolUse"] = kept
	settings["hooks"] = hooks

	out, err := marshalSettings(settings)
	return out, true, err
}

// runsTruthgate reports whether a PreToolUse entry already invokes the hook.
func runsTruthgate(entry any, command string) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	list, _ := m["hooks"].([]any)
	for _, h := range list {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		c, _ := hm["command"].(string)
		if c == command || strings.Contains(c, "truthgate hook") {
			return true
		}
	}
	return false
}

func marshalSettings(settings map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(settings); err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return buf.Bytes(), nil
}
