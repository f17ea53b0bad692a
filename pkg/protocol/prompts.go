// Package protocol implements the structured conversation between the
// orchestrator and its model: prompt construction, tolerant JSON extraction,
// schema validation, and bounded repair retries.
package protocol

import (
	"fmt"
	"strings"
)

// Locale selects the prompt language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

// Valid reports whether the locale is supported.
func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleZH
}

// templateSet holds every prompt template for one locale. Sentinel-specific
// sections are composed in at render time when sentinel tasks are enabled.
type templateSet struct {
	systemExecution          string
	systemPlanningBase       string
	systemPlanningAutonomous string
	planStepsPlain           string
	planStepsSentinel        string
	planExamplesPlain        string
	planExamplesSentinel     string
	planJSONBase             string
	planJSONSchemaPlain      string
	planJSONSchemaSentinel   string
	replanIntro              string
	progressLedger           string
	conditionCheck           string
	finalAnswer              string
	instructionFormat        string
	taskLedgerFull           string
}

func templatesFor(locale Locale) templateSet {
	if locale == LocaleZH {
		return zhTemplates
	}
	return enTemplates
}

// expand substitutes {name} placeholders. Unknown placeholders are left
// intact so a template bug shows up in the rendered prompt.
func expand(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Builder renders prompts for one session.
type Builder struct {
	templates       templateSet
	sentinelEnabled bool
}

// NewBuilder creates a prompt builder for the locale.
func NewBuilder(locale Locale, sentinelEnabled bool) *Builder {
	return &Builder{templates: templatesFor(locale), sentinelEnabled: sentinelEnabled}
}

// ExecutionSystemMessage renders the system message for the execution phase.
func (b *Builder) ExecutionSystemMessage(dateToday string) string {
	return expand(b.templates.systemExecution, map[string]string{"date_today": dateToday})
}

// PlanningSystemMessage renders the system message for the planning phase.
// The cooperative variant may ask the user one clarifying question before
// planning; the autonomous variant always plans or answers directly.
func (b *Builder) PlanningSystemMessage(cooperative bool, dateToday, team string) string {
	base := b.templates.systemPlanningBase
	if !cooperative {
		base = b.templates.systemPlanningAutonomous
	}
	steps := b.templates.planStepsPlain
	examples := b.templates.planExamplesPlain
	if b.sentinelEnabled {
		steps = b.templates.planStepsSentinel
		examples = b.templates.planExamplesSentinel
	}
	return expand(base+steps+examples, map[string]string{
		"date_today": dateToday,
		"team":       team,
	})
}

// PlanPrompt renders the user prompt requesting a plan as JSON.
func (b *Builder) PlanPrompt(team, additionalInstructions string) string {
	schema := b.templates.planJSONSchemaPlain
	if b.sentinelEnabled {
		schema = b.templates.planJSONSchemaSentinel
	}
	return expand(b.templates.planJSONBase+schema, map[string]string{
		"team":                    team,
		"additional_instructions": additionalInstructions,
	})
}

// ReplanPrompt renders the prompt requesting a fresh plan after the current
// one failed to make progress.
func (b *Builder) ReplanPrompt(task, renderedPlan, team, additionalInstructions string) string {
	intro := expand(b.templates.replanIntro, map[string]string{
		"task": task,
		"plan": renderedPlan,
	})
	return intro + b.PlanPrompt(team, additionalInstructions)
}

// ProgressLedgerPrompt renders the per-iteration ledger prompt.
func (b *Builder) ProgressLedgerPrompt(task, renderedPlan string, stepIndex int, stepTitle, stepDetails, agentName, team string, names []string, additionalInstructions string) string {
	return expand(b.templates.progressLedger, map[string]string{
		"task":                    task,
		"plan":                    renderedPlan,
		"step_index":              fmt.Sprintf("%d", stepIndex),
		"step_title":              stepTitle,
		"step_details":            stepDetails,
		"agent_name":              agentName,
		"team":                    team,
		"names":                   strings.Join(names, ", "),
		"additional_instructions": additionalInstructions,
	})
}

// ConditionCheckPrompt renders the sentinel condition evaluation prompt.
func (b *Builder) ConditionCheckPrompt(stepDescription, condition string, currentSleepSeconds int) string {
	return expand(b.templates.conditionCheck, map[string]string{
		"step_description":       stepDescription,
		"condition":              condition,
		"current_sleep_duration": fmt.Sprintf("%d", currentSleepSeconds),
	})
}

// FinalAnswerPrompt renders the final-answer prompt. A non-empty override
// replaces the built-in template; it may use the {task} placeholder.
func (b *Builder) FinalAnswerPrompt(task, override string) string {
	template := b.templates.finalAnswer
	if override != "" {
		template = override
	}
	return expand(template, map[string]string{"task": task})
}

// InstructionEnvelope formats the instruction message delivered to an agent.
func (b *Builder) InstructionEnvelope(stepIndex int, stepTitle, stepDetails, agentName, instruction string) string {
	return expand(b.templates.instructionFormat, map[string]string{
		"step_index":   fmt.Sprintf("%d", stepIndex),
		"step_title":   stepTitle,
		"step_details": stepDetails,
		"agent_name":   agentName,
		"instruction":  instruction,
	})
}

// TaskLedgerFull renders the task recap posted to the transcript when
// execution begins.
func (b *Builder) TaskLedgerFull(task, team, renderedPlan string) string {
	return expand(b.templates.taskLedgerFull, map[string]string{
		"task": task,
		"team": team,
		"plan": renderedPlan,
	})
}
