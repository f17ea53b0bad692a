// Package plan defines the typed plan model produced by the planning LLM
// call: an ordered sequence of steps, each assigned to a named agent.
// Plans are immutable after construction; replanning produces a new Plan.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StepTypeSentinel is the step_type marker for long-running sentinel steps.
const StepTypeSentinel = "SentinelPlanStep"

var (
	ErrEmptyPlan       = errors.New("plan has no steps")
	ErrStepOutOfRange  = errors.New("step index out of range")
	ErrUnknownAgent    = errors.New("step references agent not in team")
	ErrInvalidSentinel = errors.New("invalid sentinel step")
	ErrInvalidPlan     = errors.New("invalid plan")
)

// Condition is the completion condition of a sentinel step: either an exact
// number of executions (integer) or a natural-language predicate (string)
// evaluated by an LLM condition check after each execution.
type Condition struct {
	// Count > 0 means the step completes after exactly Count successful
	// agent executions. When Count is 0, Text holds the predicate.
	Count int
	Text  string
}

// IsCount reports whether the condition is an execution count.
func (c Condition) IsCount() bool { return c.Count > 0 }

// String renders the condition for prompts and logs.
func (c Condition) String() string {
	if c.IsCount() {
		return fmt.Sprintf("%d executions", c.Count)
	}
	return c.Text
}

// UnmarshalJSON accepts either an integer or a string, matching the shape
// the planning prompt asks the model to produce.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 {
			return fmt.Errorf("%w: condition count must be positive, got %d", ErrInvalidSentinel, n)
		}
		*c = Condition{Count: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: condition must be an integer or a string", ErrInvalidSentinel)
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: condition text is empty", ErrInvalidSentinel)
	}
	*c = Condition{Text: s}
	return nil
}

// MarshalJSON renders the condition back to its wire shape.
func (c Condition) MarshalJSON() ([]byte, error) {
	if c.IsCount() {
		return json.Marshal(c.Count)
	}
	return json.Marshal(c.Text)
}

// Step is a single plan step. Ordinary steps complete within one agent turn.
// Sentinel steps (StepType == StepTypeSentinel) poll a condition at a cadence
// and may run for hours or weeks.
type Step struct {
	Title     string `json:"title"`
	Details   string `json:"details"`
	AgentName string `json:"agent_name"`

	// Sentinel fields; zero values for ordinary steps.
	StepType      string     `json:"step_type,omitempty"`
	SleepDuration int        `json:"sleep_duration,omitempty"` // seconds between checks
	Condition     *Condition `json:"condition,omitempty"`
}

// IsSentinel reports whether the step is a long-running sentinel step.
func (s Step) IsSentinel() bool { return s.StepType == StepTypeSentinel }

// Plan is the typed result of a planning or replanning LLM call.
// If NeedsPlan is false, Response holds a direct answer and Steps is empty.
type Plan struct {
	Task        string `json:"task"`
	PlanSummary string `json:"plan_summary"`
	NeedsPlan   bool   `json:"needs_plan"`
	Response    string `json:"response"`
	Steps       []Step `json:"steps"`
}

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.Steps) }

// StepAt returns the step at index i with bounds checking.
func (p *Plan) StepAt(i int) (Step, error) {
	if i < 0 || i >= len(p.Steps) {
		return Step{}, fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, i, len(p.Steps))
	}
	return p.Steps[i], nil
}

// IsSentinel reports whether the step at index i is a sentinel step.
// Out-of-range indices report false.
func (p *Plan) IsSentinel(i int) bool {
	if i < 0 || i >= len(p.Steps) {
		return false
	}
	return p.Steps[i].IsSentinel()
}

// Validate checks the plan invariants against the given set of agent names:
// a direct-answer plan must carry a response and no steps, a stepped plan
// must have steps whose agents all resolve in the team.
func (p *Plan) Validate(agentNames []string) error {
	if !p.NeedsPlan {
		if strings.TrimSpace(p.Response) == "" {
			return fmt.Errorf("%w: needs_plan=false requires a non-empty response", ErrInvalidPlan)
		}
		if len(p.Steps) != 0 {
			return fmt.Errorf("%w: needs_plan=false requires an empty step list", ErrInvalidPlan)
		}
		return nil
	}
	if len(p.Steps) == 0 {
		return ErrEmptyPlan
	}
	known := make(map[string]bool, len(agentNames))
	for _, name := range agentNames {
		known[name] = true
	}
	for i, step := range p.Steps {
		if strings.TrimSpace(step.Title) == "" {
			return fmt.Errorf("%w: step %d has no title", ErrInvalidPlan, i)
		}
		if !known[step.AgentName] {
			return fmt.Errorf("%w: step %d names %q", ErrUnknownAgent, i, step.AgentName)
		}
		if step.IsSentinel() {
			if step.SleepDuration <= 0 {
				return fmt.Errorf("%w: step %d sleep_duration must be positive", ErrInvalidSentinel, i)
			}
			if step.Condition == nil {
				return fmt.Errorf("%w: step %d has no condition", ErrInvalidSentinel, i)
			}
		}
	}
	return nil
}

// Render pretty-prints the plan for inclusion in prompts.
func (p *Plan) Render() string {
	if !p.NeedsPlan {
		return p.Response
	}
	var sb strings.Builder
	for i, step := range p.Steps {
		fmt.Fprintf(&sb, "Step %d: %s\n", i+1, step.Title)
		fmt.Fprintf(&sb, "  details: %s\n", step.Details)
		fmt.Fprintf(&sb, "  agent_name: %s\n", step.AgentName)
		if step.IsSentinel() {
			fmt.Fprintf(&sb, "  step_type: %s\n", StepTypeSentinel)
			fmt.Fprintf(&sb, "  sleep_duration: %d\n", step.SleepDuration)
			fmt.Fprintf(&sb, "  condition: %s\n", step.Condition)
		}
	}
	return sb.String()
}
