package anthropic

import (
	"encoding/json"
	"strings"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// streamContentBlock tracks an in-flight content block across SSE events. A
// block is opened by content_block_start and closed by content_block_stop.
// Ported from the teacher's anthropicStream's identically named type.
type streamContentBlock struct {
	blockType        string // "text", "tool-call", "reasoning", or a passthrough no-op marker
	toolCallID       string
	toolName         string
	providerToolName string // original Anthropic tool name, e.g. "bash_code_execution"
	inputBuf         strings.Builder
	firstDelta       bool
}

// streamConverter turns Anthropic's content-block SSE state machine into
// unified events. Ported from the teacher's anthropicStream.Next, rewritten
// from its pull-loop (recursive s.Next() calls skipping no-op events) into
// the push-model Converter interface: each SSE event maps to zero or more
// unified events returned directly instead of tail-recursing to the next
// read.
type streamConverter struct {
	id    string
	model string

	contentBlocks map[int]*streamContentBlock

	inputTokens      int64
	cacheReadTokens  int64
	cacheWriteTokens int64

	started bool
}

func (c *streamConverter) Convert(raw streaming.RawFrame) ([]types.ChatStreamEvent, error) {
	if raw.Event == nil {
		return nil, nil
	}
	event := raw.Event

	switch event.Event {
	case "ping":
		return nil, nil

	case "content_block_start":
		return c.handleContentBlockStart(event.Data)

	case "content_block_delta":
		return c.handleContentBlockDelta(event.Data)

	case "content_block_stop":
		return c.handleContentBlockStop(event.Data)

	case "message_start":
		return c.handleMessageStart(event.Data)

	case "message_delta":
		return c.handleMessageDelta(event.Data)

	case "message_stop":
		return nil, nil
	}

	return nil, nil
}

func (c *streamConverter) handleContentBlockStart(data string) ([]types.ChatStreamEvent, error) {
	var start struct {
		Index        int `json:"index"`
		ContentBlock struct {
			Type       string          `json:"type"`
			ID         string          `json:"id"`
			Name       string          `json:"name"`
			Input      map[string]any  `json:"input"`
			ServerName string          `json:"server_name"`
			ToolUseID  string          `json:"tool_use_id"`
			Content    json.RawMessage `json:"content"`
		} `json:"content_block"`
	}
	if err := json.Unmarshal([]byte(data), &start); err != nil {
		return nil, nil
	}

	switch start.ContentBlock.Type {
	case "tool_use":
		var initialInput string
		if len(start.ContentBlock.Input) > 0 {
			if b, err := json.Marshal(start.ContentBlock.Input); err == nil {
				initialInput = string(b)
			}
		}
		block := &streamContentBlock{
			blockType:  "tool-call",
			toolCallID: start.ContentBlock.ID,
			toolName:   start.ContentBlock.Name,
			firstDelta: initialInput == "",
		}
		if initialInput != "" {
			block.inputBuf.WriteString(initialInput)
		}
		c.contentBlocks[start.Index] = block

	case "thinking", "redacted_thinking":
		c.contentBlocks[start.Index] = &streamContentBlock{blockType: "reasoning"}

	case "server_tool_use":
		// Anthropic's provider-defined hosted tools (web_search,
		// code_execution, bash_code_execution, text_editor_code_execution)
		// are executed by Anthropic itself, not dispatched back to the
		// caller, so they surface as paired Custom tool-call/tool-result
		// events instead of a first-class ToolCallDelta.
		toolName := start.ContentBlock.Name
		providerToolName := start.ContentBlock.Name
		if toolName == "bash_code_execution" || toolName == "text_editor_code_execution" {
			toolName = "code_execution"
		}
		c.contentBlocks[start.Index] = &streamContentBlock{
			blockType:        "hosted-tool-call",
			toolCallID:       start.ContentBlock.ID,
			toolName:         toolName,
			providerToolName: providerToolName,
			firstDelta:       true,
		}

	case "mcp_tool_use":
		input := start.ContentBlock.Input
		if input == nil {
			input = map[string]any{}
		}
		c.contentBlocks[start.Index] = &streamContentBlock{blockType: "mcp-tool-use"}
		return []types.ChatStreamEvent{types.ToolCallDelta{ToolCall: types.ToolCall{
			ID:        start.ContentBlock.ID,
			ToolName:  start.ContentBlock.Name,
			Arguments: input,
		}}}, nil

	case "mcp_tool_result":
		c.contentBlocks[start.Index] = &streamContentBlock{blockType: "mcp-tool-result"}

	default:
		c.contentBlocks[start.Index] = &streamContentBlock{blockType: start.ContentBlock.Type}

		// The result half of a hosted-tool pair (web_search_tool_result,
		// bash_code_execution_tool_result, code_execution_tool_result,
		// text_editor_code_execution_tool_result, ...) arrives fully formed
		// in content_block_start with no deltas to follow.
		if strings.HasSuffix(start.ContentBlock.Type, "_tool_result") {
			var content any
			if len(start.ContentBlock.Content) > 0 {
				_ = json.Unmarshal(start.ContentBlock.Content, &content)
			}
			return []types.ChatStreamEvent{types.Custom{Name: "tool-result", Data: map[string]any{
				"tool_use_id": start.ContentBlock.ToolUseID,
				"type":        start.ContentBlock.Type,
				"content":     content,
			}}}, nil
		}
	}

	return nil, nil
}

func (c *streamConverter) handleContentBlockDelta(data string) ([]types.ChatStreamEvent, error) {
	var delta struct {
		Index int `json:"index"`
		Delta struct {
			Type        string  `json:"type"`
			Text        string  `json:"text"`
			Content     *string `json:"content"`
			PartialJSON string  `json:"partial_json"`
			Thinking    string  `json:"thinking"`
		} `json:"delta"`
	}
	if err := json.Unmarshal([]byte(data), &delta); err != nil {
		return nil, providererrors.NewStreamError("failed to parse content delta", err)
	}

	switch delta.Delta.Type {
	case "text_delta":
		return []types.ChatStreamEvent{types.ContentDelta{Text: delta.Delta.Text}}, nil

	case "input_json_delta":
		// Skip empty deltas so the first character of a code-execution tool
		// is not double-written.
		if delta.Delta.PartialJSON == "" {
			return nil, nil
		}
		block := c.contentBlocks[delta.Index]
		if block == nil {
			return nil, nil
		}
		partialJSON := delta.Delta.PartialJSON
		// bash_code_execution and text_editor_code_execution stream raw
		// arguments with no type discriminator. Inject one on the first
		// delta so the assembled JSON parses as a typed input.
		if block.firstDelta && (block.providerToolName == "bash_code_execution" ||
			block.providerToolName == "text_editor_code_execution") &&
			len(partialJSON) > 0 && partialJSON[0] == '{' {
			partialJSON = `{"type":"` + block.providerToolName + `",` + partialJSON[1:]
		}
		block.firstDelta = false
		block.inputBuf.WriteString(partialJSON)
		return nil, nil

	case "thinking_delta":
		return []types.ChatStreamEvent{types.ThinkingDelta{Text: delta.Delta.Thinking}}, nil

	case "signature_delta":
		return nil, nil

	case "compaction_delta":
		if delta.Delta.Content != nil {
			return []types.ChatStreamEvent{types.ContentDelta{Text: *delta.Delta.Content}}, nil
		}
		return nil, nil
	}

	return nil, nil
}

func (c *streamConverter) handleContentBlockStop(data string) ([]types.ChatStreamEvent, error) {
	var stop struct {
		Index int `json:"index"`
	}
	if err := json.Unmarshal([]byte(data), &stop); err != nil {
		return nil, nil
	}
	block := c.contentBlocks[stop.Index]
	delete(c.contentBlocks, stop.Index)

	if block == nil || (block.blockType != "tool-call" && block.blockType != "hosted-tool-call") {
		return nil, nil
	}

	var args map[string]any
	inputStr := block.inputBuf.String()
	if inputStr != "" {
		if err := json.Unmarshal([]byte(inputStr), &args); err != nil {
			return nil, providererrors.NewStreamError("failed to parse tool call arguments for "+block.toolName, err)
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	if block.blockType == "hosted-tool-call" {
		return []types.ChatStreamEvent{types.Custom{Name: "tool-call", Data: map[string]any{
			"id":                 block.toolCallID,
			"tool_name":          block.toolName,
			"provider_tool_name": block.providerToolName,
			"arguments":          args,
		}}}, nil
	}

	return []types.ChatStreamEvent{types.ToolCallDelta{ToolCall: types.ToolCall{
		ID:        block.toolCallID,
		ToolName:  block.toolName,
		Arguments: args,
	}}}, nil
}

func (c *streamConverter) handleMessageStart(data string) ([]types.ChatStreamEvent, error) {
	var msg struct {
		Message struct {
			ID    string `json:"id"`
			Model string `json:"model"`
			Usage struct {
				InputTokens              int `json:"input_tokens"`
				CacheReadInputTokens     int `json:"cache_read_input_tokens"`
				CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
			} `json:"usage"`
			Content []struct {
				Type  string         `json:"type"`
				ID    string         `json:"id"`
				Name  string         `json:"name"`
				Input map[string]any `json:"input"`
			} `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, nil
	}

	c.id = msg.Message.ID
	c.model = msg.Message.Model
	c.inputTokens = int64(msg.Message.Usage.InputTokens)
	c.cacheReadTokens = int64(msg.Message.Usage.CacheReadInputTokens)
	c.cacheWriteTokens = int64(msg.Message.Usage.CacheCreationInputTokens)

	events := []types.ChatStreamEvent{types.StreamStart{ID: c.id, Model: c.model}}
	c.started = true

	// Programmatic/deferred tool calling delivers full tool_use input here
	// rather than via content_block_delta; emit it immediately.
	for _, part := range msg.Message.Content {
		if part.Type != "tool_use" {
			continue
		}
		args := part.Input
		if args == nil {
			args = map[string]any{}
		}
		events = append(events, types.ToolCallDelta{ToolCall: types.ToolCall{
			ID:        part.ID,
			ToolName:  part.Name,
			Arguments: args,
		}})
	}

	return events, nil
}

func (c *streamConverter) handleMessageDelta(data string) ([]types.ChatStreamEvent, error) {
	var delta struct {
		Delta struct {
			StopReason string `json:"stop_reason"`
		} `json:"delta"`
		Usage struct {
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal([]byte(data), &delta); err != nil {
		return nil, providererrors.NewStreamError("failed to parse message delta", err)
	}

	if delta.Delta.StopReason == "" {
		return nil, nil
	}

	var finish types.FinishReason
	switch delta.Delta.StopReason {
	case "end_turn", "stop_sequence":
		finish = types.FinishStop
	case "max_tokens":
		finish = types.FinishLength
	case "tool_use":
		finish = types.FinishToolCalls
	default:
		finish = types.FinishOther
	}

	outputTokens := int64(delta.Usage.OutputTokens)
	inputTotal := c.inputTokens + c.cacheReadTokens + c.cacheWriteTokens
	totalTokens := inputTotal + outputTokens
	usage := types.Usage{
		InputTokens:  &inputTotal,
		OutputTokens: &outputTokens,
		TotalTokens:  &totalTokens,
		InputDetails: &types.InputTokenDetails{
			NoCacheTokens:    &c.inputTokens,
			CacheReadTokens:  &c.cacheReadTokens,
			CacheWriteTokens: &c.cacheWriteTokens,
		},
	}

	return []types.ChatStreamEvent{
		types.UsageUpdate{Usage: usage},
		types.StreamEnd{FinishReason: finish, Usage: usage},
	}, nil
}

// Finish is a no-op: message_stop always arrives before the transport
// closes on a clean Anthropic stream, so StreamEnd is already emitted by
// handleMessageDelta by the time Finish runs.
func (c *streamConverter) Finish() ([]types.ChatStreamEvent, error) {
	return nil, nil
}
