package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/truthgate/internal/model"
)

func TestGateTable(t *testing.T) {
	tests := []struct {
		gate    model.GateID
		prereqs []model.GateID
		roles   []string
	}{
		{model.G2, []model.GateID{model.G1}, []string{RoleProductManager}},
		{model.G3, []model.GateID{model.G1, model.G2}, []string{RoleArchitect}},
		{model.G4, []model.GateID{model.G1, model.G2, model.G3}, []string{RoleDesigner}},
		{model.G5, []model.GateID{model.G1, model.G2, model.G3, model.G4}, []string{RoleFrontend, RoleBackend}},
		{model.G6, nil, []string{RoleQA}},
		{model.G7, nil, []string{RoleSecurity}},
		{model.G8, []model.GateID{model.G5, model.G6}, []string{RoleDevOps}},
		{model.G9, []model.GateID{model.G8}, []string{RoleDevOps}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.prereqs, Prerequisites(tt.gate), "prerequisites of %s", tt.gate)
		assert.Equal(t, tt.roles, Roles(tt.gate), "roles of %s", tt.gate)
	}
}

func TestEveryGateHasInfo(t *testing.T) {
	require.Len(t, All, 9)
	for _, id := range All {
		info, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, id, info.ID)
		assert.NotEmpty(t, info.Name)
	}
}

func TestUnknownGateHasNoRequirements(t *testing.T) {
	_, ok := Lookup("G42")
	assert.False(t, ok)
	assert.Empty(t, Prerequisites("G42"))
	assert.Empty(t, Roles("G42"))
	assert.Empty(t, Roles(model.G1))
}
