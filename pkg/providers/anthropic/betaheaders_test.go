package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidai/gollm/pkg/types"
)

func TestCombineBetaHeaders_EmptyWhenNothingRequested(t *testing.T) {
	assert.Equal(t, "", combineBetaHeaders(types.ChatRequest{}))
}

func TestCombineBetaHeaders_ContextManagementWithCompactEdit(t *testing.T) {
	req := types.ChatRequest{
		ProviderOptions: types.AnthropicOptions{
			ContextManagement: map[string]any{
				"edits": []any{map[string]any{"type": "compact"}},
			},
		},
	}
	headers := combineBetaHeaders(req)
	assert.Contains(t, headers, BetaHeaderContextManagement)
	assert.Contains(t, headers, BetaHeaderCompact)
}

func TestCombineBetaHeaders_FastSpeed(t *testing.T) {
	req := types.ChatRequest{ProviderOptions: types.AnthropicOptions{Speed: "fast"}}
	assert.Equal(t, BetaHeaderFastMode, combineBetaHeaders(req))
}

func TestCombineBetaHeaders_AutomaticCaching(t *testing.T) {
	req := types.ChatRequest{ProviderOptions: types.AnthropicOptions{AutomaticCaching: true}}
	assert.Equal(t, BetaHeaderPromptCaching, combineBetaHeaders(req))
}

func TestCombineBetaHeaders_Effort(t *testing.T) {
	req := types.ChatRequest{ProviderOptions: types.AnthropicOptions{Effort: "high"}}
	assert.Equal(t, BetaHeaderEffort, combineBetaHeaders(req))
}

func TestCombineBetaHeaders_MCPServers(t *testing.T) {
	req := types.ChatRequest{ProviderOptions: types.AnthropicOptions{MCPServers: []map[string]any{{"name": "s1"}}}}
	assert.Equal(t, BetaHeaderMCPClient, combineBetaHeaders(req))
}

func TestCombineBetaHeaders_ContainerSkills(t *testing.T) {
	req := types.ChatRequest{
		ProviderOptions: types.AnthropicOptions{
			Container: &types.AnthropicContainer{Skills: []types.AnthropicSkill{{ID: "skill-1"}}},
		},
	}
	headers := combineBetaHeaders(req)
	assert.Contains(t, headers, BetaHeaderCodeExecution20250825)
	assert.Contains(t, headers, BetaHeaderSkills)
	assert.Contains(t, headers, BetaHeaderFilesAPI)
}

func TestCombineBetaHeaders_StreamingEnablesFineGrainedToolStreamingByDefault(t *testing.T) {
	req := types.ChatRequest{Stream: true}
	assert.Equal(t, BetaHeaderFineGrainedToolStreaming, combineBetaHeaders(req))
}

func TestCombineBetaHeaders_StreamingDisabledWhenToolStreamingFalse(t *testing.T) {
	disabled := false
	req := types.ChatRequest{
		Stream:          true,
		ProviderOptions: types.AnthropicOptions{ToolStreaming: &disabled},
	}
	assert.Equal(t, "", combineBetaHeaders(req))
}

func TestCombineBetaHeaders_CodeExecutionToolDetected(t *testing.T) {
	req := types.ChatRequest{
		Tools: []types.Tool{{Name: codeExecution20260120ToolName}},
	}
	assert.Equal(t, BetaHeaderCodeExecution, combineBetaHeaders(req))
}

func TestCombineBetaHeaders_MultipleHeadersAreCommaJoined(t *testing.T) {
	req := types.ChatRequest{
		Stream:          true,
		ProviderOptions: types.AnthropicOptions{Speed: "fast"},
	}
	headers := combineBetaHeaders(req)
	assert.Equal(t, BetaHeaderFastMode+","+BetaHeaderFineGrainedToolStreaming, headers)
}
