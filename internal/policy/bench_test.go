package policy

import (
	"testing"

	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/model"
	"github.com/ppiankov/truthgate/internal/truth"
)

const benchTruth = `{
  "onboarding": {"startup_message_displayed": true, "started": true, "completed": true,
    "questions": [{"answer":"a"},{"answer":"b"},{"answer":"c"},{"answer":"d"},{"answer":"e"}]},
  "gates": {"G1": {"status":"approved"}, "G2": {"status":"approved"}, "G3": {"status":"approved"}},
  "agent_spawns": [{"gate":"G6","agent_name":"QA Engineer","status":"completed"}]
}`

func BenchmarkEvaluate_Unclassified(b *testing.B) {
	catalog := gates.NewDefault()
	state := truth.Parse([]byte(benchTruth))
	action := model.NewCommand("Bash", "echo hello")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(action, state, catalog)
	}
}

func BenchmarkEvaluate_CodeWrite(b *testing.B) {
	catalog := gates.NewDefault()
	state := truth.Parse([]byte(benchTruth))
	action := model.NewFileOp("Write", "src/components/Button.tsx")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(action, state, catalog)
	}
}

func BenchmarkParseAndEvaluate(b *testing.B) {
	catalog := gates.NewDefault()
	data := []byte(benchTruth)
	action := model.NewCommand("Bash", "pytest -q")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Evaluate(action, truth.Parse(data), catalog)
	}
}
