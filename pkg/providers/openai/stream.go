package openai

import (
	"encoding/json"

	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// chatStreamConverter turns Chat Completions SSE frames into unified
// events. Grounded on the teacher's openAIStream.Next, fixing its explicit
// "TODO: Handle streaming tool calls" gap: OpenAI streams a tool call's
// arguments as incremental JSON string fragments keyed by index, so this
// converter buffers fragments per index and emits one ToolCallDelta per
// call once its arguments parse as complete JSON (on content_block close,
// i.e. the chunk carrying a finish_reason, or on Finish for an
// unterminated stream).
type chatStreamConverter struct {
	id    string
	model string

	toolCalls map[int]*pendingToolCall
	toolOrder []int
	lastUsage types.Usage
	finished  bool
}

type pendingToolCall struct {
	id       string
	name     string
	argsJSON string
}

type chatStreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

func (c *chatStreamConverter) Convert(raw streaming.RawFrame) ([]types.ChatStreamEvent, error) {
	if raw.Event == nil || raw.Event.Data == "" {
		return nil, nil
	}

	var chunk chatStreamChunk
	if err := json.Unmarshal([]byte(raw.Event.Data), &chunk); err != nil {
		return nil, err
	}

	var events []types.ChatStreamEvent

	if c.id == "" && chunk.ID != "" {
		c.id = chunk.ID
		c.model = chunk.Model
		events = append(events, types.StreamStart{ID: c.id, Model: c.model})
	}

	if c.toolCalls == nil {
		c.toolCalls = make(map[int]*pendingToolCall)
	}

	var finish *string
	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			events = append(events, types.ContentDelta{Text: choice.Delta.Content})
		}
		for _, tc := range choice.Delta.ToolCalls {
			pending, ok := c.toolCalls[tc.Index]
			if !ok {
				pending = &pendingToolCall{}
				c.toolCalls[tc.Index] = pending
				c.toolOrder = append(c.toolOrder, tc.Index)
			}
			if tc.ID != "" {
				pending.id = tc.ID
			}
			if tc.Function.Name != "" {
				pending.name = tc.Function.Name
			}
			pending.argsJSON += tc.Function.Arguments
		}
		if choice.FinishReason != nil {
			finish = choice.FinishReason
		}
	}

	if chunk.Usage != nil {
		c.lastUsage = types.Usage{
			InputTokens:  &chunk.Usage.PromptTokens,
			OutputTokens: &chunk.Usage.CompletionTokens,
			TotalTokens:  &chunk.Usage.TotalTokens,
		}
		events = append(events, types.UsageUpdate{Usage: c.lastUsage})
	}

	if finish != nil {
		c.finished = true
		events = append(events, c.flushToolCalls()...)
		events = append(events, types.StreamEnd{FinishReason: mapFinishReason(*finish), Usage: c.lastUsage})
	}

	return events, nil
}

// flushToolCalls emits one ToolCallDelta per buffered call whose argument
// fragments parse as complete JSON, in the order each call first appeared.
func (c *chatStreamConverter) flushToolCalls() []types.ChatStreamEvent {
	var events []types.ChatStreamEvent
	for _, idx := range c.toolOrder {
		pending := c.toolCalls[idx]
		if pending == nil {
			continue
		}
		var args map[string]any
		argsJSON := pending.argsJSON
		if argsJSON == "" {
			argsJSON = "{}"
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			continue
		}
		events = append(events, types.ToolCallDelta{ToolCall: types.ToolCall{
			ID:        pending.id,
			ToolName:  pending.name,
			Arguments: args,
		}})
	}
	c.toolCalls = make(map[int]*pendingToolCall)
	c.toolOrder = nil
	return events
}

// Finish runs once the transport closes (including on the [DONE] sentinel,
// which the driver consumes without calling Convert). OpenAI's [DONE]
// carries no finish_reason of its own, so a stream that never saw one in a
// choices[].finish_reason field completed normally: flush any remaining
// tool call fragments and synthesize the implied stop.
func (c *chatStreamConverter) Finish() ([]types.ChatStreamEvent, error) {
	events := c.flushToolCalls()
	if !c.finished {
		c.finished = true
		events = append(events, types.StreamEnd{FinishReason: types.FinishStop, Usage: c.lastUsage})
	}
	return events, nil
}
