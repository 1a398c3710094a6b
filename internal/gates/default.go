package gates

import "github.com/ppiankov/truthgate/internal/model"

// DefaultPatterns is the built-in classification catalog.
var DefaultPatterns = Patterns{
	Commands: []Entry{
		{Gate: model.G5, Patterns: []string{
			`npm\s+run\s+build`,
			`npm\s+run\s+dev`,
			`npm\s+run\s+start`,
			`npm\s+run\s+lint`,
			`npx\s+tsc`,
			`npx\s+eslint`,
			`npx\s+prettier`,
			// schema changes are run by developers
			`npx\s+prisma\s+migrate`,
			`npx\s+prisma\s+db\s+push`,
		}},
		{Gate: model.G6, Patterns: []string{
			`npm\s+test`,
			`npm\s+run\s+test`,
			`jest`,
			`vitest`,
			`playwright`,
			`cypress`,
			`pytest`,
			`go\s+test`,
		}},
		{Gate: model.G7, Patterns: []string{
			`npm\s+audit`,
			`snyk`,
			`trivy`,
			`security`,
			`bandit`,
			`safety\s+check`,
		}},
		{Gate: model.G8, Patterns: []string{
			`vercel\s+deploy`,
			`npm\s+run\s+deploy`,
			`docker\s+build`,
			`docker-compose`,
			`kubectl`,
			`terraform`,
			`pulumi`,
		}},
		{Gate: model.G9, Patterns: []string{
			`vercel\s+--prod`,
			`npm\s+run\s+deploy:prod`,
			`--production`,
		}},
	},
	Files: []Entry{
		{Gate: model.G2, Patterns: []string{
			`PRD\.md$`,
			`product.*requirements`,
			`docs/PRD`,
		}},
		{Gate: model.G3, Patterns: []string{
			`ARCHITECTURE\.md$`,
			`architecture`,
			`system.*design`,
			`specs/`,
		}},
		{Gate: model.G4, Patterns: []string{
			`DESIGN\.md$`,
			`design.*system`,
			`ui.*spec`,
			`ux.*spec`,
		}},
		{Gate: model.G5, Patterns: []string{
			`\.tsx?$`,
			`\.jsx?$`,
			`\.py$`,
			`\.go$`,
			`\.rs$`,
			`src/`,
			`lib/`,
			`app/`,
			`pages/`,
			`components/`,
		}},
	},
}
