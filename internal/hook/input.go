// Package hook implements the PreToolUse hook protocol: one JSON request on
// stdin, an optional deny payload on stdout.
package hook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/truthgate/internal/model"
)

// Tool names the host sends that truthgate knows how to gate.
const (
	ToolBash         = "Bash"
	ToolWrite        = "Write"
	ToolEdit         = "Edit"
	ToolMultiEdit    = "MultiEdit"
	ToolNotebookEdit = "NotebookEdit"
)

// maxInputBytes bounds how much of stdin is read.
const maxInputBytes = 4 << 20

// Input is the PreToolUse request payload.
type Input struct {
	ToolName      string         `json:"tool_name"`
	ToolInput     map[string]any `json:"tool_input"`
	Cwd           string         `json:"cwd"`
	SessionID     string         `json:"session_id"`
	HookEventName string         `json:"hook_event_name"`
}

// ParseInput decodes one request from r.
func ParseInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("read hook input: %w", err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode hook input: %w", err)
	}
	return &in, nil
}

// Action maps the request to a gateable action. Tools truthgate does not
// gate return nil.
func (in *Input) Action() *model.Action {
	if in == nil {
		return nil
	}
	switch in.ToolName {
	case ToolBash:
		return model.NewCommand(in.ToolName, in.field("command"))
	case ToolWrite, ToolEdit, ToolMultiEdit:
		return model.NewFileOp(in.ToolName, in.field("file_path"))
	case ToolNotebookEdit:
		return model.NewFileOp(in.ToolName, in.field("notebook_path"))
	}
	return nil
}

// field returns a string tool_input field; other types read as empty.
func (in *Input) field(name string) string {
	s, _ := in.ToolInput[name].(string)
	return s
}
