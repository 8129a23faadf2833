package gemini

import (
	"encoding/json"

	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// streamConverter turns Gemini's streamGenerateContent SSE chunks into
// ChatStreamEvents. Unlike Anthropic, each chunk carries a complete
// GenerateContentResponse object (full parts, not incremental JSON
// fragments), so there is no block-accumulation state machine to run; the
// converter only needs to remember whether it has emitted StreamStart yet
// and fold usage across chunks, generalizing the teacher's
// googleStream.Next() pull loop into a push-model Converter.
type streamConverter struct {
	started bool
	model   string
}

func (c *streamConverter) Convert(raw streaming.RawFrame) ([]types.ChatStreamEvent, error) {
	if raw.Event == nil || raw.Event.Data == "" {
		return nil, nil
	}

	var chunk map[string]any
	if err := json.Unmarshal([]byte(raw.Event.Data), &chunk); err != nil {
		return nil, nil
	}

	var events []types.ChatStreamEvent

	if !c.started {
		c.started = true
		c.model = stringField(chunk, "modelVersion")
		events = append(events, types.StreamStart{Model: c.model})
	}

	candidates, _ := chunk["candidates"].([]any)
	var finishReason string
	if len(candidates) > 0 {
		candidate, _ := candidates[0].(map[string]any)
		finishReason = stringField(candidate, "finishReason")
		content, _ := candidate["content"].(map[string]any)
		partsRaw, _ := content["parts"].([]any)
		for _, pr := range partsRaw {
			part, _ := pr.(map[string]any)
			events = append(events, partToStreamEvents(part)...)
		}
	}

	if usage, ok := chunk["usageMetadata"].(map[string]any); ok {
		events = append(events, types.UsageUpdate{Usage: convertUsage(usage)})
	}

	if finishReason != "" {
		events = append(events, types.StreamEnd{FinishReason: mapFinishReason(finishReason)})
	}

	return events, nil
}

func partToStreamEvents(part map[string]any) []types.ChatStreamEvent {
	if part == nil {
		return nil
	}
	if text, ok := part["text"].(string); ok {
		if thought, _ := part["thought"].(bool); thought {
			return []types.ChatStreamEvent{types.ThinkingDelta{Text: text}}
		}
		return []types.ChatStreamEvent{types.ContentDelta{Text: text}}
	}
	if fc, ok := part["functionCall"].(map[string]any); ok {
		args, _ := fc["args"].(map[string]any)
		name := stringField(fc, "name")
		return []types.ChatStreamEvent{types.ToolCallDelta{ToolCall: types.ToolCall{
			ID:        name,
			ToolName:  name,
			Arguments: args,
		}}}
	}
	return nil
}

// Finish is a no-op: Gemini's stream always terminates with a final chunk
// carrying finishReason, which Convert already turns into StreamEnd.
func (c *streamConverter) Finish() ([]types.ChatStreamEvent, error) {
	return nil, nil
}
