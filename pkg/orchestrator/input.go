package orchestrator

import (
	"fmt"
	"strings"

	"github.com/helmsman-ai/helmsman/pkg/plan"
)

// InputKind discriminates the control messages a user can send into a
// running session.
type InputKind string

const (
	// InputApprove accepts the proposed plan as-is.
	InputApprove InputKind = "approve"
	// InputEditPlan replaces the plan with a user-edited version. During
	// approval it also counts as acceptance.
	InputEditPlan InputKind = "edit_plan"
	// InputMessage is free-text follow-up from the user.
	InputMessage InputKind = "message"
	// InputPause suspends execution at the next loop boundary.
	InputPause InputKind = "pause"
	// InputResume lifts a pause.
	InputResume InputKind = "resume"
)

// Input is one user control message.
type Input struct {
	Kind    InputKind
	Plan    *plan.Plan
	Content string
}

// inputBuffer bounds how many unprocessed user inputs a session holds.
const inputBuffer = 16

// Submit delivers a user input to the session. It never blocks: a full
// buffer or a terminated session returns an error.
func (o *Orchestrator) Submit(in Input) error {
	switch in.Kind {
	case InputApprove, InputPause, InputResume:
	case InputEditPlan:
		if in.Plan == nil {
			return fmt.Errorf("edit_plan input carries no plan")
		}
		if err := in.Plan.Validate(o.registry.Names()); err != nil {
			return err
		}
	case InputMessage:
		if strings.TrimSpace(in.Content) == "" {
			return fmt.Errorf("message input is empty")
		}
	default:
		return fmt.Errorf("unknown input kind %q", in.Kind)
	}

	if o.state.snapshot().Phase == PhaseTerminal {
		return ErrNotAcceptingInput
	}
	select {
	case o.inputs <- in:
		return nil
	default:
		return fmt.Errorf("%w: input buffer full", ErrNotAcceptingInput)
	}
}

// Approve accepts the proposed plan.
func (o *Orchestrator) Approve() error {
	return o.Submit(Input{Kind: InputApprove})
}

// EditPlan replaces the current plan with a user-edited one.
func (o *Orchestrator) EditPlan(p *plan.Plan) error {
	return o.Submit(Input{Kind: InputEditPlan, Plan: p})
}

// SubmitMessage relays follow-up text from the user into the session.
func (o *Orchestrator) SubmitMessage(content string) error {
	return o.Submit(Input{Kind: InputMessage, Content: content})
}

// Pause suspends execution at the next loop boundary.
func (o *Orchestrator) Pause() error {
	return o.Submit(Input{Kind: InputPause})
}

// Resume lifts a pause.
func (o *Orchestrator) Resume() error {
	return o.Submit(Input{Kind: InputResume})
}
