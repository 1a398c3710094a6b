package mcp

import (
	"context"
	"errors"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/truthgate/internal/hook"
	"github.com/ppiankov/truthgate/internal/policy"
	"github.com/ppiankov/truthgate/internal/truth"
)

// --- Input/Output types ---

// CheckInput defines parameters for the truthgate_check tool.
type CheckInput struct {
	Cwd      string `json:"cwd,omitempty" jsonschema:"project directory; defaults to the server's working directory"`
	ToolName string `json:"tool_name" jsonschema:"tool being gated (Bash/Write/Edit/MultiEdit/NotebookEdit)"`
	Command  string `json:"command,omitempty" jsonschema:"shell command, for Bash"`
	FilePath string `json:"file_path,omitempty" jsonschema:"target file, for file tools"`
}

// CheckOutput contains the gate decision.
type CheckOutput struct {
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
	Gate      string `json:"gate,omitempty"`
	PolicyID  string `json:"policy_id"`
	Managed   bool   `json:"managed"`
	StatePath string `json:"state_path,omitempty"`
}

// StatusInput defines parameters for the truthgate_status tool.
type StatusInput struct {
	Cwd string `json:"cwd,omitempty" jsonschema:"project directory; defaults to the server's working directory"`
}

// StatusOutput is the workflow read-out for a project.
type StatusOutput struct {
	StatePath string        `json:"state_path,omitempty"`
	Report    policy.Report `json:"report"`
}

// --- Handlers ---

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	in := &hook.Input{
		ToolName: input.ToolName,
		ToolInput: map[string]any{
			"command":       input.Command,
			"file_path":     input.FilePath,
			"notebook_path": input.FilePath,
		},
	}
	action := in.Action()
	if action == nil {
		return nil, CheckOutput{}, errors.New("tool_name must be one of Bash, Write, Edit, MultiEdit, NotebookEdit")
	}

	snap := truth.Load(s.resolve(input.Cwd))
	v := policy.Evaluate(action, snap.State, s.catalog)

	s.logger.Debug("mcp check",
		zap.String("tool", action.Tool),
		zap.String("resource", action.Resource()),
		zap.String("decision", string(v.Decision)),
		zap.String("policy_id", v.PolicyID),
	)

	return nil, CheckOutput{
		Decision:  string(v.Decision),
		Reason:    v.Reason,
		Gate:      string(v.Gate),
		PolicyID:  v.PolicyID,
		Managed:   snap.Managed(),
		StatePath: snap.Path,
	}, nil
}

func (s *Server) handleStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	snap := truth.Load(s.resolve(input.Cwd))
	return nil, StatusOutput{
		StatePath: snap.Path,
		Report:    policy.Status(snap.State),
	}, nil
}

// resolve anchors relative and empty directories at the server root.
func (s *Server) resolve(cwd string) string {
	if cwd == "" {
		return s.root
	}
	if !filepath.IsAbs(cwd) {
		return filepath.Join(s.root, cwd)
	}
	return cwd
}
