package ollama

import (
	"encoding/json"

	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// streamConverter turns Ollama's newline-delimited /api/chat chunks into
// ChatStreamEvents. Each line is a complete JSON object carrying a message
// delta plus, on the final line, done/done_reason and the eval counters,
// generalizing the teacher's ollamaStream.Next() pull loop (which targets
// the OpenAI-compatible SSE endpoint instead) onto the native API's
// JSON-lines transport.
type streamConverter struct {
	started bool
}

func (c *streamConverter) Convert(raw streaming.RawFrame) ([]types.ChatStreamEvent, error) {
	if len(raw.JSONLine) == 0 {
		return nil, nil
	}

	var chunk map[string]any
	if err := json.Unmarshal(raw.JSONLine, &chunk); err != nil {
		return nil, nil
	}

	var events []types.ChatStreamEvent

	if !c.started {
		c.started = true
		events = append(events, types.StreamStart{Model: stringField(chunk, "model")})
	}

	if message, ok := chunk["message"].(map[string]any); ok {
		if text := stringField(message, "content"); text != "" {
			events = append(events, types.ContentDelta{Text: text})
		}
		if thinking := stringField(message, "thinking"); thinking != "" {
			events = append(events, types.ThinkingDelta{Text: thinking})
		}
		toolCallsRaw, _ := message["tool_calls"].([]any)
		for _, tcr := range toolCallsRaw {
			tc, _ := tcr.(map[string]any)
			fn, _ := tc["function"].(map[string]any)
			args, _ := fn["arguments"].(map[string]any)
			events = append(events, types.ToolCallDelta{ToolCall: types.ToolCall{
				ToolName:  stringField(fn, "name"),
				Arguments: args,
			}})
		}
	}

	done, _ := chunk["done"].(bool)
	if done {
		promptEval := int64Field(chunk, "prompt_eval_count")
		eval := int64Field(chunk, "eval_count")
		total := promptEval + eval
		events = append(events,
			types.UsageUpdate{Usage: types.Usage{
				InputTokens:  &promptEval,
				OutputTokens: &eval,
				TotalTokens:  &total,
			}},
			types.StreamEnd{FinishReason: mapDoneReason(stringField(chunk, "done_reason"), done)},
		)
	}

	return events, nil
}

// Finish is a no-op: a clean Ollama stream always emits a final line with
// done=true before the connection closes.
func (c *streamConverter) Finish() ([]types.ChatStreamEvent, error) {
	return nil, nil
}
