// Package truth locates and reads a project's workflow truth store
// (.truth/truth.json). Every read is best-effort: a missing, unreadable or
// malformed document yields an empty, unmanaged state.
package truth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ppiankov/truthgate/internal/model"
)

const (
	// Dir is the per-project directory holding the truth store.
	Dir = ".truth"
	// FileName is the truth store document name.
	FileName = "truth.json"
	// MaxParentLevels bounds the upward search from the working directory.
	MaxParentLevels = 5
)

// EmptyHash is the hash reported when no document was read.
var EmptyHash = hashBytes(nil)

// Snapshot is one read of the truth store.
type Snapshot struct {
	Path  string               `json:"path,omitempty"`
	State *model.WorkflowState `json:"-"`
	Hash  string               `json:"hash"`
}

// Managed reports whether the snapshot belongs to a project that opted in.
func (s Snapshot) Managed() bool {
	return s.State.Managed()
}

// PathFor returns the truth store path for a project root.
func PathFor(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// Find searches cwd and up to MaxParentLevels ancestors for the truth store.
func Find(cwd string) (string, bool) {
	if cwd == "" {
		return "", false
	}
	current := filepath.Clean(cwd)
	if p := PathFor(current); exists(p) {
		return p, true
	}
	for i := 0; i < MaxParentLevels; i++ {
		current = filepath.Dir(current)
		if p := PathFor(current); exists(p) {
			return p, true
		}
	}
	return "", false
}

// Load finds and parses the truth store for cwd.
func Load(cwd string) Snapshot {
	path, ok := Find(cwd)
	if !ok {
		return Snapshot{State: &model.WorkflowState{}, Hash: EmptyHash}
	}
	return ReadFile(path)
}

// ReadFile parses the document at path. I/O errors yield an empty state.
func ReadFile(path string) Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{Path: path, State: &model.WorkflowState{}, Hash: EmptyHash}
	}
	return Snapshot{Path: path, State: Parse(data), Hash: hashBytes(data)}
}

// Parse decodes a truth store document. It never fails: malformed JSON
// yields an empty state, and a top-level key whose value has the wrong shape
// still marks the project as managed but contributes no data.
func Parse(data []byte) *model.WorkflowState {
	state := &model.WorkflowState{}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return state
	}

	if raw, ok := top["onboarding"]; ok {
		state.HasOnboarding = true
		state.Onboarding = parseOnboarding(raw)
	}

	if raw, ok := top["gates"]; ok {
		state.HasGates = true
		state.Gates = parseGates(raw)
	}

	if raw, ok := top["agent_spawns"]; ok {
		state.HasAgentSpawns = true
		state.AgentSpawns = parseSpawns(raw)
	}

	return state
}

// parseOnboarding decodes each onboarding field on its own. Flags are read
// by truthiness and malformed question entries are dropped.
func parseOnboarding(raw json.RawMessage) model.Onboarding {
	var ob model.Onboarding
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ob
	}
	ob.StartupMessageDisplayed = flag(fields["startup_message_displayed"])
	ob.Started = flag(fields["started"])
	ob.Completed = flag(fields["completed"])

	var entries []json.RawMessage
	if err := json.Unmarshal(fields["questions"], &entries); err != nil {
		return ob
	}
	for _, e := range entries {
		var q model.Question
		if err := json.Unmarshal(e, &q); err != nil {
			continue
		}
		ob.Questions = append(ob.Questions, q)
	}
	return ob
}

func flag(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return model.Truthy(v)
}

// parseGates decodes gate records one by one so a single bad entry does not
// discard the rest.
func parseGates(raw json.RawMessage) map[model.GateID]model.GateRecord {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	gates := make(map[model.GateID]model.GateRecord, len(entries))
	for id, e := range entries {
		var rec model.GateRecord
		if err := json.Unmarshal(e, &rec); err != nil {
			continue
		}
		gates[model.GateID(id)] = rec
	}
	return gates
}

func parseSpawns(raw json.RawMessage) []model.Spawn {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	spawns := make([]model.Spawn, 0, len(entries))
	for _, e := range entries {
		var sp model.Spawn
		if err := json.Unmarshal(e, &sp); err != nil {
			continue
		}
		spawns = append(spawns, sp)
	}
	return spawns
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
