package openai

import (
	"encoding/json"

	"github.com/corvidai/gollm/pkg/provider"
	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

func chatTransformers() provider.ChatTransformers {
	return provider.ChatTransformers{
		Request:    chatRequestTransformer{},
		Response:   chatResponseTransformer{},
		Converter:  &chatStreamConverter{},
		StreamMode: streaming.ModeSSE,
	}
}

// ChatTransformers exposes the Chat Completions request/response/stream
// transform bundle for reuse by openaicompat, which sends the same wire
// format to OpenAI-compatible vendors under different URLs and auth.
func ChatTransformers() provider.ChatTransformers {
	return chatTransformers()
}

type chatRequestTransformer struct{}

// TransformChat builds a Chat Completions request body, generalizing the
// teacher's buildRequestBody off its fixed GenerateOptions onto the
// canonical ChatMessage/ContentPart model so every content part (tool
// calls, tool results, images) round-trips rather than only plain text.
func (chatRequestTransformer) TransformChat(req types.ChatRequest) (map[string]any, error) {
	body := map[string]any{
		"model": modelIDFromRequest(req),
	}

	messages := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		converted, err := convertMessage(msg)
		if err != nil {
			return nil, err
		}
		messages = append(messages, converted...)
	}
	body["messages"] = messages

	applyCommonParams(body, req.CommonParams)

	if len(req.Tools) > 0 {
		body["tools"] = convertTools(req.Tools)
		if req.ToolChoice != nil {
			body["tool_choice"] = convertToolChoice(*req.ToolChoice)
		}
	}

	if opts, ok := req.ProviderOptions.(types.OpenAIOptions); ok {
		if opts.ReasoningEffort != "" {
			body["reasoning_effort"] = opts.ReasoningEffort
		}
		if opts.ParallelToolCalls != nil {
			body["parallel_tool_calls"] = *opts.ParallelToolCalls
		}
		if opts.ServiceTier != "" {
			body["service_tier"] = opts.ServiceTier
		}
		if len(opts.LogitBias) > 0 {
			body["logit_bias"] = opts.LogitBias
		}
	}

	return body, nil
}

func modelIDFromRequest(req types.ChatRequest) string {
	if req.Telemetry != nil {
		if id, ok := req.Telemetry.Metadata["modelID"].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

func applyCommonParams(body map[string]any, p types.CommonParams) {
	if p.Temperature != nil {
		body["temperature"] = *p.Temperature
	}
	if p.MaxTokens != nil {
		body["max_tokens"] = *p.MaxTokens
	}
	if p.TopP != nil {
		body["top_p"] = *p.TopP
	}
	if p.FrequencyPenalty != nil {
		body["frequency_penalty"] = *p.FrequencyPenalty
	}
	if p.PresencePenalty != nil {
		body["presence_penalty"] = *p.PresencePenalty
	}
	if len(p.StopSequences) > 0 {
		body["stop"] = p.StopSequences
	}
	if p.Seed != nil {
		body["seed"] = *p.Seed
	}
}

func convertTools(tools []types.Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
				"strict":      t.Strict,
			},
		})
	}
	return out
}

func convertToolChoice(tc types.ToolChoice) any {
	switch tc.Type {
	case types.ToolChoiceAuto:
		return "auto"
	case types.ToolChoiceNone:
		return "none"
	case types.ToolChoiceRequired:
		return "required"
	case types.ToolChoiceTool:
		return map[string]any{"type": "function", "function": map[string]any{"name": tc.ToolName}}
	default:
		return "auto"
	}
}

// convertMessage expands one ChatMessage into zero or more OpenAI wire
// messages: a ToolResultPart becomes its own "tool"-role message per
// OpenAI's one-result-per-message convention, unlike the canonical model
// which allows several in one ChatMessage.
func convertMessage(msg types.ChatMessage) ([]map[string]any, error) {
	var textParts []string
	var toolCalls []map[string]any
	var toolMessages []map[string]any

	for _, part := range msg.Content {
		switch p := part.(type) {
		case types.TextPart:
			textParts = append(textParts, p.Text)
		case types.ToolCallPart:
			args, err := json.Marshal(p.Arguments)
			if err != nil {
				return nil, err
			}
			toolCalls = append(toolCalls, map[string]any{
				"id":   p.ToolCallID,
				"type": "function",
				"function": map[string]any{
					"name":      p.ToolName,
					"arguments": string(args),
				},
			})
		case types.ToolResultPart:
			toolMessages = append(toolMessages, map[string]any{
				"role":         "tool",
				"tool_call_id": p.ToolCallID,
				"content":      stringifyToolResult(p.Result),
			})
		case types.ImagePart:
			// Vision content embeds into the message's content array rather
			// than a separate message; handled by buildContentArray below
			// when any non-text part is present.
		}
	}

	out := make([]map[string]any, 0, 1+len(toolMessages))

	if len(toolMessages) == 0 || len(textParts) > 0 || len(toolCalls) > 0 || hasNonTextNonToolResult(msg.Content) {
		m := map[string]any{"role": string(msg.Role)}
		if hasNonTextNonToolResult(msg.Content) {
			m["content"] = buildContentArray(msg.Content)
		} else {
			content := joinStrings(textParts)
			m["content"] = content
		}
		if len(toolCalls) > 0 {
			m["tool_calls"] = toolCalls
			delete(m, "content")
		}
		if msg.Name != "" {
			m["name"] = msg.Name
		}
		out = append(out, m)
	}

	out = append(out, toolMessages...)
	return out, nil
}

func hasNonTextNonToolResult(parts []types.ContentPart) bool {
	for _, p := range parts {
		switch p.(type) {
		case types.ImagePart, types.AudioPart, types.FilePart:
			return true
		}
	}
	return false
}

func buildContentArray(parts []types.ContentPart) []map[string]any {
	out := make([]map[string]any, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case types.TextPart:
			out = append(out, map[string]any{"type": "text", "text": p.Text})
		case types.ImagePart:
			out = append(out, map[string]any{"type": "image_url", "image_url": map[string]any{
				"url":    sourceURL(p.Source),
				"detail": string(p.Detail),
			}})
		}
	}
	return out
}

func sourceURL(src types.MediaSource) string {
	switch s := src.(type) {
	case types.URLSource:
		return s.URL
	case types.Base64Source:
		return "data:" + s.MediaType + ";base64," + s.Data
	default:
		return ""
	}
}

func joinStrings(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}

func stringifyToolResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	return string(encoded)
}

type chatResponseTransformer struct{}

// openAIChatResponse mirrors the wire shape the teacher's openAIResponse
// struct captured, kept as map[string]any decoding here since
// provider.ResponseTransformer works against the executor's generic
// decoded map rather than a fixed struct.
func (chatResponseTransformer) TransformChatResponse(raw map[string]any) (types.ChatResponse, error) {
	resp := types.ChatResponse{
		ID:    stringField(raw, "id"),
		Model: stringField(raw, "model"),
	}

	choices, _ := raw["choices"].([]any)
	if len(choices) > 0 {
		choice, _ := choices[0].(map[string]any)
		message, _ := choice["message"].(map[string]any)

		content, err := contentFromMessage(message)
		if err != nil {
			return types.ChatResponse{}, err
		}
		resp.Content = content
		resp.FinishReason = mapFinishReason(stringField(choice, "finish_reason"))
	}

	if usage, ok := raw["usage"].(map[string]any); ok {
		resp.Usage = convertUsage(usage)
	}

	return resp, nil
}

func contentFromMessage(message map[string]any) ([]types.ContentPart, error) {
	if message == nil {
		return nil, nil
	}
	var parts []types.ContentPart
	if text, ok := message["content"].(string); ok && text != "" {
		parts = append(parts, types.TextPart{Text: text})
	}
	if calls, ok := message["tool_calls"].([]any); ok {
		for _, c := range calls {
			call, _ := c.(map[string]any)
			fn, _ := call["function"].(map[string]any)
			var args map[string]any
			if argStr, ok := fn["arguments"].(string); ok && argStr != "" {
				if err := json.Unmarshal([]byte(argStr), &args); err != nil {
					return nil, providererrors.NewValidationError("tool_calls.function.arguments", "malformed tool call arguments JSON", err)
				}
			}
			parts = append(parts, types.ToolCallPart{
				ToolCallID: stringField(call, "id"),
				ToolName:   stringField(fn, "name"),
				Arguments:  args,
			})
		}
	}
	return parts, nil
}

func mapFinishReason(reason string) types.FinishReason {
	switch reason {
	case "stop":
		return types.FinishStop
	case "length":
		return types.FinishLength
	case "content_filter":
		return types.FinishContentFilter
	case "tool_calls", "function_call":
		return types.FinishToolCalls
	case "":
		return types.FinishUnknown
	default:
		return types.FinishOther
	}
}

// convertUsage generalizes the teacher's convertOpenAIUsage, same cached-
// and reasoning-token breakdown logic, operating on a decoded map instead
// of a fixed openAIUsage struct.
func convertUsage(raw map[string]any) types.Usage {
	prompt := int64Field(raw, "prompt_tokens")
	completion := int64Field(raw, "completion_tokens")
	total := int64Field(raw, "total_tokens")

	usage := types.Usage{
		InputTokens:  &prompt,
		OutputTokens: &completion,
		TotalTokens:  &total,
		Raw:          raw,
	}

	if details, ok := raw["prompt_tokens_details"].(map[string]any); ok {
		cached := int64Field(details, "cached_tokens")
		if cached > 0 {
			noCache := prompt - cached
			usage.InputDetails = &types.InputTokenDetails{
				NoCacheTokens:   &noCache,
				CacheReadTokens: &cached,
			}
		}
	}

	if details, ok := raw["completion_tokens_details"].(map[string]any); ok {
		reasoning := int64Field(details, "reasoning_tokens")
		if reasoning > 0 {
			text := completion - reasoning
			usage.OutputDetails = &types.OutputTokenDetails{
				TextTokens:      &text,
				ReasoningTokens: &reasoning,
			}
		}
	}

	return usage
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func int64Field(m map[string]any, key string) int64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
