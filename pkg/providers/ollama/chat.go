package ollama

import (
	"encoding/base64"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

func chatTransformers() provider.ChatTransformers {
	return provider.ChatTransformers{
		Request:    chatRequestTransformer{},
		Response:   chatResponseTransformer{},
		Converter:  &streamConverter{},
		StreamMode: streaming.ModeJSONLines,
	}
}

type chatRequestTransformer struct{}

// TransformChat builds Ollama's native /api/chat body: a flat "options"
// sub-object for sampling params (not top-level fields, unlike the
// teacher's OpenAI-compatible proxy) and a "think" flag, per
// build_chat_request_body/build_model_options in chat.rs.
func (chatRequestTransformer) TransformChat(req types.ChatRequest) (map[string]any, error) {
	model := modelIDFromRequest(req)

	body := map[string]any{
		"model":    model,
		"messages": convertMessages(req.Messages),
		"stream":   req.Stream,
	}

	opts, _ := req.ProviderOptions.(types.OllamaOptions)

	if len(req.Tools) > 0 {
		body["tools"] = convertTools(req.Tools)
	}

	options := map[string]any{}
	if req.CommonParams.Temperature != nil {
		options["temperature"] = *req.CommonParams.Temperature
	}
	if req.CommonParams.MaxTokens != nil {
		options["num_predict"] = *req.CommonParams.MaxTokens
	}
	if req.CommonParams.TopP != nil {
		options["top_p"] = *req.CommonParams.TopP
	}
	if req.CommonParams.TopK != nil {
		options["top_k"] = *req.CommonParams.TopK
	}
	if len(req.CommonParams.StopSequences) > 0 {
		options["stop"] = req.CommonParams.StopSequences
	}
	if opts.NumCtx != nil {
		options["num_ctx"] = *opts.NumCtx
	}
	if len(options) > 0 {
		body["options"] = options
	}

	if opts.KeepAlive != "" {
		body["keep_alive"] = opts.KeepAlive
	}
	if opts.Format != nil {
		body["format"] = opts.Format
	}

	think := opts.Think
	if think == nil && isThinkingModel(model) {
		t := true
		think = &t
	}
	if think != nil {
		body["think"] = *think
	}

	return body, nil
}

func convertMessages(msgs []types.ChatMessage) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, msg := range msgs {
		m := map[string]any{"role": string(msg.Role)}
		if msg.Role == types.RoleTool {
			m["role"] = "tool"
		}

		var text string
		var images []string
		var toolCalls []map[string]any

		for _, part := range msg.Content {
			switch p := part.(type) {
			case types.TextPart:
				text += p.Text
			case types.ImagePart:
				if img := imageToBase64(p); img != "" {
					images = append(images, img)
				}
			case types.ToolCallPart:
				toolCalls = append(toolCalls, map[string]any{
					"function": map[string]any{
						"name":      p.ToolName,
						"arguments": p.Arguments,
					},
				})
			case types.ToolResultPart:
				text += stringifyResult(p.Result)
			}
		}

		m["content"] = text
		if len(images) > 0 {
			m["images"] = images
		}
		if len(toolCalls) > 0 {
			m["tool_calls"] = toolCalls
		}
		out = append(out, m)
	}
	return out
}

func imageToBase64(p types.ImagePart) string {
	switch src := p.Source.(type) {
	case types.Base64Source:
		return src.Data
	case types.BinarySource:
		return base64.StdEncoding.EncodeToString(src.Bytes)
	default:
		return ""
	}
}

func stringifyResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	return ""
}

func convertTools(tools []types.Tool) []map[string]any {
	out := make([]map[string]any, len(tools))
	for i, t := range tools {
		out[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		}
	}
	return out
}

type chatResponseTransformer struct{}

func (chatResponseTransformer) TransformChatResponse(raw map[string]any) (types.ChatResponse, error) {
	resp := types.ChatResponse{Model: stringField(raw, "model")}

	message, _ := raw["message"].(map[string]any)
	if message != nil {
		if text := stringField(message, "content"); text != "" {
			resp.Content = append(resp.Content, types.TextPart{Text: text})
		}
		if thinking := stringField(message, "thinking"); thinking != "" {
			resp.Content = append(resp.Content, types.ReasoningPart{Text: thinking})
		}
		toolCallsRaw, _ := message["tool_calls"].([]any)
		for _, tcr := range toolCallsRaw {
			tc, _ := tcr.(map[string]any)
			fn, _ := tc["function"].(map[string]any)
			args, _ := fn["arguments"].(map[string]any)
			resp.Content = append(resp.Content, types.ToolCallPart{
				ToolName:  stringField(fn, "name"),
				Arguments: args,
			})
		}
	}

	done, _ := raw["done"].(bool)
	resp.FinishReason = mapDoneReason(stringField(raw, "done_reason"), done)

	promptEval := int64Field(raw, "prompt_eval_count")
	eval := int64Field(raw, "eval_count")
	if promptEval > 0 || eval > 0 {
		total := promptEval + eval
		resp.Usage = types.Usage{
			InputTokens:  &promptEval,
			OutputTokens: &eval,
			TotalTokens:  &total,
		}
	}

	return resp, nil
}

func mapDoneReason(reason string, done bool) types.FinishReason {
	switch reason {
	case "stop":
		return types.FinishStop
	case "length":
		return types.FinishLength
	case "":
		if done {
			return types.FinishStop
		}
		return types.FinishUnknown
	default:
		return types.FinishOther
	}
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
