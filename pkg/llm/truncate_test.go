package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// wordCounter counts whitespace-separated words, standing in for a BPE
// encoding in tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func msg(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

func TestTruncateKeepsSystemAndTail(t *testing.T) {
	messages := []Message{
		msg(RoleSystem, "system prompt"),
		msg(RoleUser, "oldest user turn with many many extra words here"),
		msg(RoleAssistant, "middle assistant turn"),
		msg(RoleUser, "newest turn"),
	}

	tr := NewTruncator(wordCounter{}, 20)
	got := tr.Truncate(messages)

	require.Len(t, got, 3)
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Equal(t, "middle assistant turn", got[1].Content)
	assert.Equal(t, "newest turn", got[2].Content)
}

func TestTruncateNeverDropsLastMessage(t *testing.T) {
	messages := []Message{
		msg(RoleSystem, "system"),
		msg(RoleUser, strings.Repeat("word ", 100)),
	}

	tr := NewTruncator(wordCounter{}, 10)
	got := tr.Truncate(messages)

	// Over budget but nothing droppable remains.
	require.Len(t, got, 2)
	assert.Equal(t, RoleUser, got[1].Role)
}

func TestTruncateDisabled(t *testing.T) {
	messages := []Message{msg(RoleUser, strings.Repeat("word ", 50))}
	tr := NewTruncator(wordCounter{}, 0)
	assert.Equal(t, messages, tr.Truncate(messages))
}

func TestTruncateUnderBudgetUntouched(t *testing.T) {
	messages := []Message{
		msg(RoleSystem, "system"),
		msg(RoleUser, "short"),
	}
	tr := NewTruncator(wordCounter{}, 100)
	assert.Equal(t, messages, tr.Truncate(messages))
}

func TestFromChatRoleMapping(t *testing.T) {
	user := FromChat(models.TextMessage("user", "hi"))
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "hi", user.Content)

	agent := FromChat(models.TextMessage("web_surfer", "found it"))
	assert.Equal(t, RoleAssistant, agent.Role)
}
