package scenario

// Case is one test case within a scenario.
type Case struct {
	Tool           string `yaml:"tool"`
	Command        string `yaml:"command,omitempty"`
	FilePath       string `yaml:"file_path,omitempty"`
	Expect         string `yaml:"expect"`
	ReasonContains string `yaml:"reason_contains,omitempty"`
}

// Resource returns the command or file path under test.
func (c Case) Resource() string {
	if c.Command != "" {
		return c.Command
	}
	return c.FilePath
}

// Scenario is a named truth store paired with the decisions it should produce.
// State has the same shape as .truth/truth.json; leaving it out models an
// unmanaged project.
type Scenario struct {
	Name  string         `yaml:"name"`
	State map[string]any `yaml:"state,omitempty"`
	Cases []Case         `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Tool     string `json:"tool"`
	Resource string `json:"resource"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Gate     string `json:"gate,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Want     string `json:"reason_contains,omitempty"`
	Problem  string `json:"problem,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
