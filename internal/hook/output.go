package hook

import (
	"encoding/json"
	"fmt"
	"io"
)

// EventPreToolUse is the only hook event truthgate answers.
const EventPreToolUse = "PreToolUse"

// Output is the deny payload written to stdout.
type Output struct {
	HookSpecificOutput SpecificOutput `json:"hookSpecificOutput"`
}

// SpecificOutput carries the permission decision.
type SpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason"`
}

// WriteDeny writes a single deny payload carrying reason verbatim.
func WriteDeny(w io.Writer, reason string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	err := enc.Encode(Output{
		HookSpecificOutput: SpecificOutput{
			HookEventName:            EventPreToolUse,
			PermissionDecision:       "deny",
			PermissionDecisionReason: reason,
		},
	})
	if err != nil {
		return fmt.Errorf("write deny output: %w", err)
	}
	return nil
}
