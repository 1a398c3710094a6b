package model

import (
	"bytes"
	"encoding/json"
)

// GateID identifies a workflow gate (G1..G9).
type GateID string

const (
	G1 GateID = "G1"
	G2 GateID = "G2"
	G3 GateID = "G3"
	G4 GateID = "G4"
	G5 GateID = "G5"
	G6 GateID = "G6"
	G7 GateID = "G7"
	G8 GateID = "G8"
	G9 GateID = "G9"
)

// GateStatus is the recorded status of a gate. The zero value means unset.
type GateStatus string

const (
	GateUnset    GateStatus = ""
	GatePending  GateStatus = "pending"
	GateApproved GateStatus = "approved"
	GateRejected GateStatus = "rejected"
)

// SpawnStatus is the lifecycle status of an agent spawn.
type SpawnStatus string

const (
	SpawnPending   SpawnStatus = "pending"
	SpawnCompleted SpawnStatus = "completed"
	SpawnFailed    SpawnStatus = "failed"
)

// RequiredAnswers is the number of onboarding questions that must be answered.
const RequiredAnswers = 5

// Decision is the gate enforcement outcome.
type Decision string

const (
	Allow Decision = "allow"
	Deny  Decision = "deny"
)

// Question is one onboarding intake question.
type Question struct {
	Answer string `json:"answer,omitempty"`
}

// UnmarshalJSON accepts any JSON value for answer. Strings are kept as-is;
// any other truthy value counts as an answer and is stored as raw JSON.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Answer = ""
	v := bytes.TrimSpace(raw.Answer)
	if len(v) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		return nil
	}
	if s, ok := decoded.(string); ok {
		q.Answer = s
		return nil
	}
	if Truthy(decoded) {
		q.Answer = string(v)
	}
	return nil
}

// Truthy reports whether a decoded JSON value is set: null, false, any zero
// number, "" and empty arrays or objects are not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// Onboarding tracks the one-time intake sequence.
type Onboarding struct {
	StartupMessageDisplayed bool       `json:"startup_message_displayed"`
	Started                 bool       `json:"started"`
	Completed               bool       `json:"completed"`
	Questions               []Question `json:"questions"`
}

// GateRecord is the stored record for one gate.
type GateRecord struct {
	Status GateStatus `json:"status"`
}

// Spawn records that a role was invoked to perform gate work.
type Spawn struct {
	Gate      GateID      `json:"gate"`
	AgentName string      `json:"agent_name"`
	Status    SpawnStatus `json:"status"`
}

// WorkflowState is a read-only snapshot of a project's truth store.
// The Has* flags record which top-level keys were present in the document,
// independent of whether their contents decoded cleanly.
type WorkflowState struct {
	Onboarding  Onboarding            `json:"onboarding"`
	Gates       map[GateID]GateRecord `json:"gates"`
	AgentSpawns []Spawn               `json:"agent_spawns"`

	HasOnboarding  bool `json:"-"`
	HasGates       bool `json:"-"`
	HasAgentSpawns bool `json:"-"`
}

// Managed reports whether the project opted into gate enforcement.
func (s *WorkflowState) Managed() bool {
	if s == nil {
		return false
	}
	return s.HasOnboarding || s.HasGates || s.HasAgentSpawns
}

// GateStatusOf returns the recorded status for a gate, or GateUnset.
func (s *WorkflowState) GateStatusOf(id GateID) GateStatus {
	if s == nil || s.Gates == nil {
		return GateUnset
	}
	return s.Gates[id].Status
}

// GateApproved returns true if the gate's status is approved.
func (s *WorkflowState) GateApproved(id GateID) bool {
	return s.GateStatusOf(id) == GateApproved
}

// SpawnCompleted returns true if at least one completed spawn exists for
// the given gate and agent name.
func (s *WorkflowState) SpawnCompleted(gate GateID, agent string) bool {
	if s == nil {
		return false
	}
	for _, sp := range s.AgentSpawns {
		if sp.Gate == gate && sp.AgentName == agent && sp.Status == SpawnCompleted {
			return true
		}
	}
	return false
}

// AnsweredQuestions counts onboarding questions with a non-empty answer.
func (s *WorkflowState) AnsweredQuestions() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, q := range s.Onboarding.Questions {
		if q.Answer != "" {
			n++
		}
	}
	return n
}

// ActionKind distinguishes shell commands from file operations.
type ActionKind string

const (
	KindCommand ActionKind = "command"
	KindFile    ActionKind = "file"
)

// Action is one intercepted tool invocation.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Tool    string     `json:"tool"`
	Command string     `json:"command,omitempty"`
	Path    string     `json:"path,omitempty"`
}

// NewCommand creates a shell command action.
func NewCommand(tool, command string) *Action {
	return &Action{Kind: KindCommand, Tool: tool, Command: command}
}

// NewFileOp creates a file write/edit action.
func NewFileOp(tool, path string) *Action {
	return &Action{Kind: KindFile, Tool: tool, Path: path}
}

// Resource returns the command text or file path.
func (a *Action) Resource() string {
	if a.Kind == KindCommand {
		return a.Command
	}
	return a.Path
}

// Verdict is the output of gate evaluation.
type Verdict struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason,omitempty"`
	Gate     GateID   `json:"gate,omitempty"`
	PolicyID string   `json:"policy_id,omitempty"`
}

// Allowed returns true if the verdict permits the action.
func (v Verdict) Allowed() bool {
	return v.Decision != Deny
}
