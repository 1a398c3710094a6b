package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/hook"
	"github.com/ppiankov/truthgate/internal/model"
	"github.com/ppiankov/truthgate/internal/policy"
	"github.com/ppiankov/truthgate/internal/truth"
)

// Run evaluates all cases against the scenario's state. Cases are
// independent; the state is read-only.
func Run(s *Scenario, catalog *gates.Catalog) (*RunResult, error) {
	state, err := buildState(s.State)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = gates.NewDefault()
	}

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		v := evaluate(c, state, catalog)
		actual := string(v.Decision)
		expected := strings.ToLower(c.Expect)

		cr := CaseResult{
			Index:    i + 1,
			Tool:     c.Tool,
			Resource: c.Resource(),
			Expected: expected,
			Actual:   actual,
			Gate:     string(v.Gate),
			Reason:   v.Reason,
			Want:     c.ReasonContains,
		}

		switch {
		case actual != expected:
			cr.Problem = fmt.Sprintf("expected %s, got %s", expected, actual)
		case c.ReasonContains != "" && !strings.Contains(v.Reason, c.ReasonContains):
			cr.Problem = fmt.Sprintf("reason does not contain %q", c.ReasonContains)
		default:
			cr.Passed = true
		}

		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// LoadAndRun loads a scenario YAML file and runs it against the catalog at
// catalogPath (built-in patterns when empty).
func LoadAndRun(path, catalogPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	catalog, err := gates.LoadCatalog(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	result, err := Run(&s, catalog)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	result.File = path

	return result, nil
}

// evaluate maps the case onto a hook request so tool handling matches the
// live hook exactly.
func evaluate(c Case, state *model.WorkflowState, catalog *gates.Catalog) model.Verdict {
	in := &hook.Input{
		ToolName: c.Tool,
		ToolInput: map[string]any{
			"command":       c.Command,
			"file_path":     c.FilePath,
			"notebook_path": c.FilePath,
		},
	}
	return policy.Evaluate(in.Action(), state, catalog)
}

// buildState round-trips the YAML state through JSON so it is read by the
// same parser as a real truth store.
func buildState(raw map[string]any) (*model.WorkflowState, error) {
	if raw == nil {
		return &model.WorkflowState{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return truth.Parse(data), nil
}
