package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextMessage(t *testing.T) {
	msg := NewTextMessage(RoleUser, "hello")
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Text())
}

func TestChatMessage_Text_IgnoresNonTextParts(t *testing.T) {
	msg := ChatMessage{Content: []ContentPart{
		TextPart{Text: "a"},
		ToolCallPart{ToolCallID: "1", ToolName: "search"},
		TextPart{Text: "b"},
	}}
	assert.Equal(t, "ab", msg.Text())
}

func TestChatMessage_ToolCalls_ExtractsInOrder(t *testing.T) {
	msg := ChatMessage{Content: []ContentPart{
		TextPart{Text: "thinking"},
		ToolCallPart{ToolCallID: "1", ToolName: "search"},
		ToolCallPart{ToolCallID: "2", ToolName: "fetch"},
	}}
	calls := msg.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "search", calls[0].ToolName)
	assert.Equal(t, "fetch", calls[1].ToolName)
}

func TestNewToolMessage_AcceptsKnownToolCallID(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleAssistant, Content: []ContentPart{ToolCallPart{ToolCallID: "call-1", ToolName: "search"}}},
	}
	msg, err := NewToolMessage(history, ToolResultPart{ToolCallID: "call-1", Result: "done"})
	require.NoError(t, err)
	assert.Equal(t, RoleTool, msg.Role)
	require.Len(t, msg.Content, 1)
}

func TestNewToolMessage_RejectsUnknownToolCallID(t *testing.T) {
	_, err := NewToolMessage(nil, ToolResultPart{ToolCallID: "ghost", Result: "x"})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content.toolCallId", verr.Field)
}

func TestNewToolMessage_ValidatesEachResultIndependently(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleAssistant, Content: []ContentPart{ToolCallPart{ToolCallID: "call-1", ToolName: "search"}}},
	}
	_, err := NewToolMessage(history,
		ToolResultPart{ToolCallID: "call-1", Result: "ok"},
		ToolResultPart{ToolCallID: "call-unknown", Result: "bad"},
	)
	assert.Error(t, err)
}

func TestNewToolMessage_ScansToolCallIDsAcrossMultipleHistoryMessages(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleAssistant, Content: []ContentPart{ToolCallPart{ToolCallID: "call-1", ToolName: "search"}}},
		{Role: RoleTool, Content: []ContentPart{ToolResultPart{ToolCallID: "call-1", Result: "x"}}},
		{Role: RoleAssistant, Content: []ContentPart{ToolCallPart{ToolCallID: "call-2", ToolName: "fetch"}}},
	}
	msg, err := NewToolMessage(history, ToolResultPart{ToolCallID: "call-2", Result: "y"})
	require.NoError(t, err)
	assert.Len(t, msg.Content, 1)
}
