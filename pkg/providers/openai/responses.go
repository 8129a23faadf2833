package openai

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// responsesTransformers builds the transformer bundle for OpenAI's
// Responses API (POST /responses, POST /responses/{id}/cancel), new
// relative to the teacher's Chat-Completions-only language_model.go.
// Grounded on original_source/siumai-provider-openai's
// wrap_handle_with_responses_remote_cancel: the response id is captured
// from the first response.created event and used for a best-effort
// remote cancel if the caller cancels the stream afterward.
func responsesTransformers(ctx provider.Context) provider.ChatTransformers {
	return provider.ChatTransformers{
		Request:        responsesRequestTransformer{},
		Response:       responsesResponseTransformer{},
		Converter:      &responsesStreamConverter{},
		StreamMode:     streaming.ModeSSE,
		CancelNotifier: responsesCancelNotifier(ctx),
	}
}

func responsesCancelNotifier(ctx provider.Context) streaming.CancelNotifier {
	return func(responseID string) {
		if responseID == "" {
			return
		}
		baseURL := strings.TrimRight(ctx.BaseURL, "/")
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		req, err := http.NewRequest(http.MethodPost, baseURL+"/responses/"+responseID+"/cancel", nil)
		if err != nil {
			return
		}
		if ctx.APIKey != nil && !ctx.APIKey.Empty() {
			req.Header.Set("Authorization", "Bearer "+ctx.APIKey.Reveal())
		}
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
		}
	}
}

type responsesRequestTransformer struct{}

// TransformChat maps the canonical request onto the Responses API's
// input-array shape: one {role, content} item per ChatMessage, content
// itself an array of typed parts rather than Chat Completions' flat string.
func (responsesRequestTransformer) TransformChat(req types.ChatRequest) (map[string]any, error) {
	body := map[string]any{
		"model": modelIDFromRequest(req),
	}

	input := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := make([]map[string]any, 0, len(msg.Content))
		for _, part := range msg.Content {
			switch p := part.(type) {
			case types.TextPart:
				content = append(content, map[string]any{"type": "input_text", "text": p.Text})
			case types.ImagePart:
				content = append(content, map[string]any{"type": "input_image", "image_url": sourceURL(p.Source)})
			case types.ToolResultPart:
				content = append(content, map[string]any{
					"type":         "function_call_output",
					"call_id":      p.ToolCallID,
					"output":       stringifyToolResult(p.Result),
				})
			case types.ToolCallPart:
				args, err := json.Marshal(p.Arguments)
				if err != nil {
					return nil, err
				}
				content = append(content, map[string]any{
					"type":      "function_call",
					"call_id":   p.ToolCallID,
					"name":      p.ToolName,
					"arguments": string(args),
				})
			}
		}
		input = append(input, map[string]any{"role": string(msg.Role), "content": content})
	}
	body["input"] = input

	applyCommonParams(body, req.CommonParams)

	if len(req.Tools) > 0 {
		body["tools"] = convertResponsesTools(req.Tools)
		if req.ToolChoice != nil {
			body["tool_choice"] = convertToolChoice(*req.ToolChoice)
		}
	}

	if opts, ok := req.ProviderOptions.(types.OpenAIOptions); ok && opts.ReasoningEffort != "" {
		body["reasoning"] = map[string]any{"effort": opts.ReasoningEffort}
	}

	return body, nil
}

func convertResponsesTools(tools []types.Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]any{
			"type":        "function",
			"name":        t.Name,
			"description": t.Description,
			"parameters":  t.Parameters,
			"strict":      t.Strict,
		})
	}
	return out
}

type responsesResponseTransformer struct{}

func (responsesResponseTransformer) TransformChatResponse(raw map[string]any) (types.ChatResponse, error) {
	resp := types.ChatResponse{
		ID:    stringField(raw, "id"),
		Model: stringField(raw, "model"),
	}

	output, _ := raw["output"].([]any)
	for _, item := range output {
		entry, _ := item.(map[string]any)
		switch stringField(entry, "type") {
		case "message":
			contentItems, _ := entry["content"].([]any)
			for _, c := range contentItems {
				cm, _ := c.(map[string]any)
				if stringField(cm, "type") == "output_text" {
					resp.Content = append(resp.Content, types.TextPart{Text: stringField(cm, "text")})
				}
			}
		case "function_call":
			var args map[string]any
			if argStr := stringField(entry, "arguments"); argStr != "" {
				_ = json.Unmarshal([]byte(argStr), &args)
			}
			resp.Content = append(resp.Content, types.ToolCallPart{
				ToolCallID: stringField(entry, "call_id"),
				ToolName:   stringField(entry, "name"),
				Arguments:  args,
			})
		}
	}

	resp.FinishReason = mapResponsesStatus(stringField(raw, "status"))
	if usage, ok := raw["usage"].(map[string]any); ok {
		resp.Usage = convertResponsesUsage(usage)
	}
	return resp, nil
}

func mapResponsesStatus(status string) types.FinishReason {
	switch status {
	case "completed":
		return types.FinishStop
	case "incomplete":
		return types.FinishLength
	case "failed", "cancelled":
		return types.FinishError
	default:
		return types.FinishUnknown
	}
}

func convertResponsesUsage(raw map[string]any) types.Usage {
	input := int64Field(raw, "input_tokens")
	output := int64Field(raw, "output_tokens")
	total := int64Field(raw, "total_tokens")
	return types.Usage{InputTokens: &input, OutputTokens: &output, TotalTokens: &total, Raw: raw}
}

// responsesStreamConverter handles the Responses API's typed SSE event
// stream, distinct from Chat Completions' one-shape-per-chunk frames.
// Grounded on original_source's inline test fixture's response.created
// event and the spec's response.output_text.delta/response.completed
// event names; the response id is surfaced both as the unified
// StreamStart.ID (consumed by pkg/streaming's CancelNotifier wiring) and a
// Custom event carrying the raw metadata, mirroring the Rust source's
// "openai:response-metadata" custom event.
type responsesStreamConverter struct {
	id          string
	model       string
	pendingCall map[string]*pendingToolCall
	callOrder   []string
}

type responsesEventEnvelope struct {
	Type     string          `json:"type"`
	Response json.RawMessage `json:"response"`
	Delta    string          `json:"delta"`
	CallID   string          `json:"call_id"`
	Name     string          `json:"name"`
	Item     json.RawMessage `json:"item"`
}

func (c *responsesStreamConverter) Convert(raw streaming.RawFrame) ([]types.ChatStreamEvent, error) {
	if raw.Event == nil || raw.Event.Data == "" {
		return nil, nil
	}

	var env responsesEventEnvelope
	if err := json.Unmarshal([]byte(raw.Event.Data), &env); err != nil {
		return nil, err
	}

	var events []types.ChatStreamEvent

	switch env.Type {
	case "response.created", "response.in_progress":
		if c.id == "" && env.Response != nil {
			var resp struct {
				ID    string `json:"id"`
				Model string `json:"model"`
			}
			if err := json.Unmarshal(env.Response, &resp); err == nil && resp.ID != "" {
				c.id = resp.ID
				c.model = resp.Model
				events = append(events, types.StreamStart{ID: c.id, Model: c.model})
				events = append(events, types.Custom{Name: "openai:response-metadata", Data: map[string]any{"id": resp.ID}})
			}
		}
	case "response.output_text.delta":
		events = append(events, types.ContentDelta{Text: env.Delta})
	case "response.reasoning_summary_text.delta":
		events = append(events, types.ThinkingDelta{Text: env.Delta})
	case "response.function_call_arguments.delta":
		if c.pendingCall == nil {
			c.pendingCall = make(map[string]*pendingToolCall)
		}
		pending, ok := c.pendingCall[env.CallID]
		if !ok {
			pending = &pendingToolCall{id: env.CallID, name: env.Name}
			c.pendingCall[env.CallID] = pending
			c.callOrder = append(c.callOrder, env.CallID)
		}
		pending.argsJSON += env.Delta
	case "response.output_item.done":
		if item := c.toolCallFromItem(env.Item); item != nil {
			events = append(events, types.ToolCallDelta{ToolCall: *item})
		}
	case "response.completed", "response.incomplete", "response.failed":
		var respBody map[string]any
		if env.Response != nil {
			_ = json.Unmarshal(env.Response, &respBody)
		}
		finish := mapResponsesStatus(stringField(respBody, "status"))
		var usage types.Usage
		if u, ok := respBody["usage"].(map[string]any); ok {
			usage = convertResponsesUsage(u)
		}
		events = append(events, types.UsageUpdate{Usage: usage})
		events = append(events, types.StreamEnd{FinishReason: finish, Usage: usage})
	}

	return events, nil
}

// toolCallFromItem extracts a completed function_call item's id/name/
// arguments, preferring the fully buffered delta accumulation if present.
func (c *responsesStreamConverter) toolCallFromItem(raw json.RawMessage) *types.ToolCall {
	if raw == nil {
		return nil
	}
	var item struct {
		Type      string `json:"type"`
		CallID    string `json:"call_id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &item); err != nil || item.Type != "function_call" {
		return nil
	}

	argsJSON := item.Arguments
	if pending, ok := c.pendingCall[item.CallID]; ok && pending.argsJSON != "" {
		argsJSON = pending.argsJSON
	}
	if argsJSON == "" {
		argsJSON = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil
	}
	return &types.ToolCall{ID: item.CallID, ToolName: item.Name, Arguments: args}
}

func (c *responsesStreamConverter) Finish() ([]types.ChatStreamEvent, error) {
	return nil, nil
}
