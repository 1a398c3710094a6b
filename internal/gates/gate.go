// Package gates holds the static workflow gate table and the pattern
// catalogs that map shell commands and file paths to gates.
package gates

import "github.com/ppiankov/truthgate/internal/model"

// Role names as recorded in agent_spawns.
const (
	RoleProductManager = "Product Manager"
	RoleArchitect      = "Architect"
	RoleDesigner       = "UX/UI Designer"
	RoleFrontend       = "Frontend Developer"
	RoleBackend        = "Backend Developer"
	RoleQA             = "QA Engineer"
	RoleSecurity       = "Security & Privacy Engineer"
	RoleDevOps         = "DevOps Engineer"
)

// Info is the static metadata for one gate.
type Info struct {
	ID            model.GateID
	Name          string
	Prerequisites []model.GateID
	Roles         []string
}

// All lists every gate in workflow order.
var All = []model.GateID{
	model.G1, model.G2, model.G3, model.G4, model.G5,
	model.G6, model.G7, model.G8, model.G9,
}

var table = map[model.GateID]Info{
	model.G1: {ID: model.G1, Name: "Scope"},
	model.G2: {
		ID:            model.G2,
		Name:          "Product requirements",
		Prerequisites: []model.GateID{model.G1},
		Roles:         []string{RoleProductManager},
	},
	model.G3: {
		ID:            model.G3,
		Name:          "Architecture",
		Prerequisites: []model.GateID{model.G1, model.G2},
		Roles:         []string{RoleArchitect},
	},
	model.G4: {
		ID:            model.G4,
		Name:          "Design",
		Prerequisites: []model.GateID{model.G1, model.G2, model.G3},
		Roles:         []string{RoleDesigner},
	},
	model.G5: {
		ID:            model.G5,
		Name:          "Development",
		Prerequisites: []model.GateID{model.G1, model.G2, model.G3, model.G4},
		Roles:         []string{RoleFrontend, RoleBackend},
	},
	// G6 and G7 run alongside development and gate only on their own spawn.
	model.G6: {ID: model.G6, Name: "Testing", Roles: []string{RoleQA}},
	model.G7: {ID: model.G7, Name: "Security review", Roles: []string{RoleSecurity}},
	model.G8: {
		ID:            model.G8,
		Name:          "Staging deployment",
		Prerequisites: []model.GateID{model.G5, model.G6},
		Roles:         []string{RoleDevOps},
	},
	model.G9: {
		ID:            model.G9,
		Name:          "Production deployment",
		Prerequisites: []model.GateID{model.G8},
		Roles:         []string{RoleDevOps},
	},
}

// CodeGenerationGates must be approved before any source file is written.
var CodeGenerationGates = []model.GateID{model.G1, model.G2, model.G3}

// Lookup returns the metadata for a gate.
func Lookup(id model.GateID) (Info, bool) {
	info, ok := table[id]
	return info, ok
}

// Prerequisites returns the gates that must be approved before work on id.
func Prerequisites(id model.GateID) []model.GateID {
	return table[id].Prerequisites
}

// Roles returns the roles that must have a completed spawn for id.
func Roles(id model.GateID) []string {
	return table[id].Roles
}
