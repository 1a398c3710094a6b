package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/truthgate/internal/model"
	"github.com/ppiankov/truthgate/internal/policy"
	"github.com/ppiankov/truthgate/internal/truth"
)

func writeTruth(t *testing.T, dir, doc string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".truth"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".truth", "truth.json"), []byte(doc), 0o644))
}

func TestEvalAction(t *testing.T) {
	a, err := evalAction("", "npm test", "")
	require.NoError(t, err)
	assert.Equal(t, model.NewCommand("Bash", "npm test"), a)

	a, err = evalAction("", "", "src/app.py")
	require.NoError(t, err)
	assert.Equal(t, model.NewFileOp("Write", "src/app.py"), a)

	a, err = evalAction("NotebookEdit", "", "nb.ipynb")
	require.NoError(t, err)
	assert.Equal(t, model.NewFileOp("NotebookEdit", "nb.ipynb"), a)

	_, err = evalAction("Read", "", "src/app.py")
	assert.Error(t, err)
}

func TestRunEvalText(t *testing.T) {
	dir := t.TempDir()
	writeTruth(t, dir, `{"gates": {}}`)
	t.Setenv("HOME", t.TempDir())

	evalDir, evalTool, evalCommand, evalFile, evalFormat, evalCatalog = dir, "", "npm test", "", "text", ""

	var out bytes.Buffer
	evalCmd.SetOut(&out)
	t.Cleanup(func() { evalCmd.SetOut(nil) })

	require.NoError(t, runEval(evalCmd, nil))

	s := out.String()
	assert.Contains(t, s, "Decision: deny")
	assert.Contains(t, s, "Policy:   gate.G6.spawns")
	assert.Contains(t, s, "Gate:     G6 (Testing)")
	assert.Contains(t, s, "Missing: QA Engineer.")
}

func TestRunEvalJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	evalDir, evalTool, evalCommand, evalFile, evalFormat, evalCatalog = dir, "", "", "src/app.py", "json", ""

	var out bytes.Buffer
	evalCmd.SetOut(&out)
	t.Cleanup(func() { evalCmd.SetOut(nil) })

	require.NoError(t, runEval(evalCmd, nil))

	var result EvalResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.False(t, result.Managed)
	assert.Equal(t, model.Allow, result.Verdict.Decision)
	assert.Equal(t, "gate.unmanaged", result.Verdict.PolicyID)
}

func TestRenderStatus(t *testing.T) {
	dir := t.TempDir()
	writeTruth(t, dir, `{
	  "onboarding": {"startup_message_displayed": true, "started": true, "completed": true},
	  "gates": {"G1": {"status": "approved"}, "G2": {"status": "rejected"}}
	}`)

	snap := truth.Load(dir)
	out := renderStatus(StatusView{StatePath: snap.Path, Report: policy.Status(snap.State)})

	assert.Contains(t, out, snap.Path)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "blocked")
	assert.Contains(t, out, "Gates G2, G3 not approved.")
	assert.Contains(t, out, "approved")
	assert.Contains(t, out, "rejected")
	assert.Contains(t, out, "spawn Product Manager")
	assert.Contains(t, out, "needs G5, G6")
}

func TestRenderStatusWithoutStore(t *testing.T) {
	out := renderStatus(StatusView{Report: policy.Status(nil)})
	assert.Contains(t, out, "No truth store found")
}

func TestWriteStatusJSON(t *testing.T) {
	dir := t.TempDir()
	writeTruth(t, dir, `{"agent_spawns": []}`)

	var out bytes.Buffer
	require.NoError(t, writeStatus(&out, truth.Load(dir), "json"))

	var view StatusView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.True(t, view.Report.Managed)
	assert.Len(t, view.Report.Gates, 9)
	assert.True(t, strings.HasSuffix(view.StatePath, filepath.Join(".truth", "truth.json")))
}

func TestAuditPathFromConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("audit:\n  path: /var/log/truthgate.jsonl\n"), 0o644))
	configPath = cfgFile
	t.Cleanup(func() { configPath = "" })

	p, err := auditPath(nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/truthgate.jsonl", p)

	p, err = auditPath([]string{"explicit.jsonl"})
	require.NoError(t, err)
	assert.Equal(t, "explicit.jsonl", p)
}

func TestAuditPathUnconfigured(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configPath = "" })

	_, err := auditPath(nil)
	assert.Error(t, err)
}
