package policy

import (
	"fmt"
	"strings"

	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/model"
)

// commandPreview is how much of a command is quoted in deny reasons.
const commandPreview = 50

// Evaluate decides whether an action may proceed given a truth store snapshot.
//
// Evaluation order (must not be changed):
//  1. Unmanaged project or unclassified action: allow
//  2. Code generation check: G5 file writes need onboarding and G1-G3
//  3. Prerequisite gates: every prerequisite must be approved
//  4. Required spawns: every role needs a completed spawn for the gate
//
// The first failing step decides; within a step every missing item is listed.
func Evaluate(action *model.Action, state *model.WorkflowState, catalog *gates.Catalog) model.Verdict {
	if action == nil || !state.Managed() {
		return model.Verdict{Decision: model.Allow, PolicyID: "gate.unmanaged"}
	}
	if catalog == nil {
		catalog = gates.NewDefault()
	}

	gate, ok := catalog.Classify(action)
	if !ok {
		return model.Verdict{Decision: model.Allow, PolicyID: "gate.none"}
	}

	return EvaluateGate(gate, action, state)
}

// EvaluateGate runs steps 2-4 for an already classified action.
func EvaluateGate(gate model.GateID, action *model.Action, state *model.WorkflowState) model.Verdict {
	subject := describe(action)

	// Step 2: code generation. Only G1-G3 are checked here; G4 is left to the
	// prerequisite step below.
	if gate == model.G5 && action.Kind == model.KindFile {
		if ok, detail := CanGenerateCode(state); !ok {
			return deny(gate, "codegen", fmt.Sprintf(
				"BLOCKED: Code generation attempted (%s to %s). Code generation blocked: %s",
				action.Tool, action.Path, detail))
		}
	}

	// Step 3: prerequisite gates
	if missing := MissingPrerequisites(state, gate); len(missing) > 0 {
		return deny(gate, "prerequisites", fmt.Sprintf(
			"BLOCKED: %s work detected (%s) but prerequisite gates not approved. "+
				"Missing: %s. Complete earlier gates first.",
			gate, subject, joinGates(missing)))
	}

	// Step 4: required spawns
	if missing := MissingRoles(state, gate); len(missing) > 0 {
		reason := fmt.Sprintf(
			"BLOCKED: %s work detected (%s) but required agent(s) not spawned. "+
				"Missing: %s. Use Task tool to spawn the agent(s) first.",
			gate, subject, strings.Join(missing, ", "))
		if action.Kind == model.KindFile {
			reason += " The orchestrator cannot do this work directly."
		}
		return deny(gate, "spawns", reason)
	}

	return model.Verdict{
		Decision: model.Allow,
		Gate:     gate,
		PolicyID: fmt.Sprintf("gate.%s.allow", gate),
	}
}

// CheckOnboarding reports whether onboarding is complete, and if not, which
// step is outstanding.
func CheckOnboarding(state *model.WorkflowState) (bool, string) {
	if state == nil {
		state = &model.WorkflowState{}
	}
	ob := state.Onboarding
	if !ob.StartupMessageDisplayed {
		return false, "Startup message not displayed. Call display_startup_message first."
	}
	if !ob.Started {
		return false, "Onboarding not started. Call start_onboarding first."
	}
	if !ob.Completed {
		remaining := model.RequiredAnswers - state.AnsweredQuestions()
		if remaining < 0 {
			remaining = 0
		}
		return false, fmt.Sprintf("Onboarding incomplete. %d questions remaining.", remaining)
	}
	return true, ""
}

// CanGenerateCode reports whether source files may be written: onboarding
// must be complete and every code generation gate approved.
func CanGenerateCode(state *model.WorkflowState) (bool, string) {
	if ok, reason := CheckOnboarding(state); !ok {
		return false, reason
	}

	var missing []model.GateID
	for _, g := range gates.CodeGenerationGates {
		if !state.GateApproved(g) {
			missing = append(missing, g)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("Gates %s not approved.", joinGates(missing))
	}
	return true, ""
}

// MissingPrerequisites lists every prerequisite of gate that is not approved.
func MissingPrerequisites(state *model.WorkflowState, gate model.GateID) []model.GateID {
	var missing []model.GateID
	for _, p := range gates.Prerequisites(gate) {
		if !state.GateApproved(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// MissingRoles lists every required role of gate without a completed spawn.
func MissingRoles(state *model.WorkflowState, gate model.GateID) []string {
	var missing []string
	for _, role := range gates.Roles(gate) {
		if !state.SpawnCompleted(gate, role) {
			missing = append(missing, role)
		}
	}
	return missing
}

func deny(gate model.GateID, step, reason string) model.Verdict {
	return model.Verdict{
		Decision: model.Deny,
		Reason:   reason,
		Gate:     gate,
		PolicyID: fmt.Sprintf("gate.%s.%s", gate, step),
	}
}

func describe(action *model.Action) string {
	if action.Kind == model.KindCommand {
		return fmt.Sprintf("command: %s...", preview(action.Command, commandPreview))
	}
	return fmt.Sprintf("%s to %s", action.Tool, action.Path)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func joinGates(ids []model.GateID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
