package policy

import (
	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/model"
)

// GateReport summarises what stands between a gate and its work.
type GateReport struct {
	Gate                 model.GateID     `json:"gate"`
	Name                 string           `json:"name"`
	Status               model.GateStatus `json:"status"`
	MissingPrerequisites []model.GateID   `json:"missing_prerequisites,omitempty"`
	MissingRoles         []string         `json:"missing_roles,omitempty"`
}

// Ready reports whether gate work would pass the prerequisite and spawn checks.
func (r GateReport) Ready() bool {
	return len(r.MissingPrerequisites) == 0 && len(r.MissingRoles) == 0
}

// OnboardingReport summarises intake progress.
type OnboardingReport struct {
	Complete bool   `json:"complete"`
	Answered int    `json:"answered"`
	Required int    `json:"required"`
	Pending  string `json:"pending,omitempty"`
}

// Report is a full read-out of a project's workflow state.
type Report struct {
	Managed      bool             `json:"managed"`
	Onboarding   OnboardingReport `json:"onboarding"`
	CodeGenReady bool             `json:"code_generation_ready"`
	CodeGenBlock string           `json:"code_generation_blocked,omitempty"`
	Gates        []GateReport     `json:"gates"`
}

// Status builds a Report for every gate in workflow order.
func Status(state *model.WorkflowState) Report {
	if state == nil {
		state = &model.WorkflowState{}
	}
	obOK, obPending := CheckOnboarding(state)
	cgOK, cgBlock := CanGenerateCode(state)

	r := Report{
		Managed: state.Managed(),
		Onboarding: OnboardingReport{
			Complete: obOK,
			Answered: state.AnsweredQuestions(),
			Required: model.RequiredAnswers,
			Pending:  obPending,
		},
		CodeGenReady: cgOK,
		CodeGenBlock: cgBlock,
	}

	for _, id := range gates.All {
		info, _ := gates.Lookup(id)
		r.Gates = append(r.Gates, GateReport{
			Gate:                 id,
			Name:                 info.Name,
			Status:               state.GateStatusOf(id),
			MissingPrerequisites: MissingPrerequisites(state, id),
			MissingRoles:         MissingRoles(state, id),
		})
	}
	return r
}
