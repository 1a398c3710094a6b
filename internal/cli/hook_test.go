package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/truthgate/internal/config"
	"github.com/ppiankov/truthgate/internal/hook"
)

// runHookCommand drives `truthgate hook` through cobra with stdin set to
// input and returns stdout, stderr and the execution error.
func runHookCommand(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"hook"}, args...))
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	_, err := rootCmd.ExecuteC()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func hookInput(t *testing.T, cwd, command string) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"session_id":      "sess-cli",
		"hook_event_name": "PreToolUse",
		"tool_name":       "Bash",
		"tool_input":      map[string]any{"command": command},
		"cwd":             cwd,
	})
	require.NoError(t, err)
	return string(data)
}

func TestHookCommandInvalidConfigAllows(t *testing.T) {
	dir := t.TempDir()
	writeTruth(t, dir, `{"gates": {}}`)
	cfg := writeConfig(t, "log: [unclosed\n")

	stdout, _, err := runHookCommand(t, hookInput(t, dir, "npm test"), "--config", cfg)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestHookCommandManagedDenyWritesOneObject(t *testing.T) {
	dir := t.TempDir()
	writeTruth(t, dir, `{"gates": {}}`)
	cfg := writeConfig(t, "log:\n  level: error\n")

	stdout, _, err := runHookCommand(t, hookInput(t, dir, "npm test"), "--config", cfg)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(stdout))
	var out hook.Output
	require.NoError(t, dec.Decode(&out), stdout)
	assert.Equal(t, "PreToolUse", out.HookSpecificOutput.HookEventName)
	assert.Equal(t, "deny", out.HookSpecificOutput.PermissionDecision)
	assert.Contains(t, out.HookSpecificOutput.PermissionDecisionReason, "QA Engineer")

	var extra json.RawMessage
	assert.ErrorIs(t, dec.Decode(&extra), io.EOF, "expected exactly one JSON object, got %q", stdout)
}

func TestHookCommandUnmanagedAllowsSilently(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, "log:\n  level: error\n")

	stdout, _, err := runHookCommand(t, hookInput(t, dir, "npm test"), "--config", cfg)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestHookCommandRecoversHandlerPanic(t *testing.T) {
	dir := t.TempDir()
	writeTruth(t, dir, `{"gates": {}}`)
	cfg := writeConfig(t, "log:\n  level: error\n")

	newHandler = func(*config.Config, *zap.Logger) *hook.Handler { panic("boom") }
	t.Cleanup(func() { newHandler = hook.New })

	var (
		stdout, stderr string
		err            error
	)
	require.NotPanics(t, func() {
		stdout, stderr, err = runHookCommand(t, hookInput(t, dir, "npm test"), "--config", cfg)
	})
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "hook panicked, allowing: boom")
}

func TestHookCommandFlagErrorExitsZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"hook", "--config"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	cmd, err := rootCmd.ExecuteC()
	require.Error(t, err)
	assert.Same(t, hookCmd, cmd)
	assert.Equal(t, 0, exitCode(cmd, err))
	assert.Empty(t, stdout.String())
}

func TestExitCode(t *testing.T) {
	failure := errors.New("failed")
	assert.Equal(t, 0, exitCode(rootCmd, nil))
	assert.Equal(t, 0, exitCode(hookCmd, failure))
	assert.Equal(t, 1, exitCode(rootCmd, failure))
	assert.Equal(t, 1, exitCode(evalCmd, failure))
}
