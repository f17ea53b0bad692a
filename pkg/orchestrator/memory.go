package orchestrator

import (
	"context"

	"github.com/helmsman-ai/helmsman/pkg/plan"
)

// Suggestion is a prior plan retrieved from memory with its relevance score
// in [0, 1].
type Suggestion struct {
	Task  string
	Plan  *plan.Plan
	Score float64
}

// Memory supplies plans from earlier sessions. Under retrieve_relevant_plans
// "reuse" a high-confidence suggestion is adopted without calling the model;
// under "hint" suggestions are folded into the planning prompt.
type Memory interface {
	SuggestPlans(ctx context.Context, task string, limit int) ([]Suggestion, error)
	StorePlan(ctx context.Context, task string, p *plan.Plan) error
}

// reuseScoreThreshold is the minimum relevance for adopting a remembered
// plan without consulting the model.
const reuseScoreThreshold = 0.8

// suggestionLimit caps how many remembered plans are retrieved per task.
const suggestionLimit = 3
