package agents

import (
	"context"
	"fmt"

	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/team"
)

// UserProxy stands in for the human user in the team roster so planners can
// address questions to them. It is never dispatched: the orchestrator
// intercepts instructions to team.UserProxyName and collects the answer
// through follow-up input instead.
type UserProxy struct{}

// NewUserProxy creates the user proxy placeholder.
func NewUserProxy() *UserProxy { return &UserProxy{} }

func (p *UserProxy) Name() string { return team.UserProxyName }

func (p *UserProxy) Description() string {
	return "The human user. Address an instruction to them to ask a question or request information only they have."
}

// Stream always fails: questions to the user never take an agent turn.
func (p *UserProxy) Stream(_ context.Context, _ []models.ChatMessage) (<-chan team.StreamItem, <-chan error) {
	items := make(chan team.StreamItem)
	errs := make(chan error, 1)
	errs <- fmt.Errorf("user proxy cannot be dispatched")
	close(items)
	close(errs)
	return items, errs
}

var _ team.Agent = (*UserProxy)(nil)
