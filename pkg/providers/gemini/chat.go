package gemini

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
		StreamMode: streaming.ModeSSE,
	}
}

type chatRequestTransformer struct{}

// TransformChat ports the teacher's LanguageModel.buildRequestBody,
// generalized off *provider.GenerateOptions onto ChatRequest and enriched
// with the generationConfig fields documented in
// siumai-protocol-gemini/.../generation.rs that the teacher's snapshot never
// wired up (thinkingConfig, cachedContent, safetySettings).
func (chatRequestTransformer) TransformChat(req types.ChatRequest) (map[string]any, error) {
	contents, system := convertMessages(req.Messages)

	body := map[string]any{"contents": contents}
	if system != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": system}},
		}
	}

	opts, _ := req.ProviderOptions.(types.GeminiOptions)

	if opts.CachedContent != "" {
		body["cachedContent"] = opts.CachedContent
	}
	if len(opts.SafetySettings) > 0 {
		body["safetySettings"] = opts.SafetySettings
	}

	genConfig := map[string]any{}
	if req.CommonParams.Temperature != nil {
		genConfig["temperature"] = *req.CommonParams.Temperature
	}
	if req.CommonParams.MaxTokens != nil {
		genConfig["maxOutputTokens"] = *req.CommonParams.MaxTokens
	}
	if req.CommonParams.TopP != nil {
		genConfig["topP"] = *req.CommonParams.TopP
	}
	if req.CommonParams.TopK != nil {
		genConfig["topK"] = *req.CommonParams.TopK
	}
	if req.CommonParams.PresencePenalty != nil {
		genConfig["presencePenalty"] = *req.CommonParams.PresencePenalty
	}
	if req.CommonParams.FrequencyPenalty != nil {
		genConfig["frequencyPenalty"] = *req.CommonParams.FrequencyPenalty
	}
	if req.CommonParams.Seed != nil {
		genConfig["seed"] = *req.CommonParams.Seed
	}
	if len(req.CommonParams.StopSequences) > 0 {
		genConfig["stopSequences"] = req.CommonParams.StopSequences
	}
	if opts.ThinkingBudget != nil {
		genConfig["thinkingConfig"] = map[string]any{
			"thinkingBudget":  *opts.ThinkingBudget,
			"includeThoughts": true,
		}
	}
	if len(genConfig) > 0 {
		body["generationConfig"] = genConfig
	}

	if len(req.Tools) > 0 {
		body["tools"] = []map[string]any{{"functionDeclarations": convertTools(req.Tools)}}
	}
	if req.ToolChoice != nil {
		body["toolConfig"] = convertToolChoice(*req.ToolChoice)
	}

	return body, nil
}

// convertMessages splits ChatMessage history into Gemini's contents array
// plus a system instruction string, generalizing the teacher's
// prompt.ToGoogleMessages: assistant maps to "model", tool results become
// functionResponse parts under role "user" (Gemini has no tool role), and
// tool calls become functionCall parts under role "model".
func convertMessages(msgs []types.ChatMessage) ([]map[string]any, string) {
	var system string
	var out []map[string]any

	for _, msg := range msgs {
		if msg.Role == types.RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += msg.Text()
			continue
		}

		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}

		parts := convertParts(msg)
		if len(parts) == 0 {
			continue
		}
		out = append(out, map[string]any{"role": role, "parts": parts})
	}

	return out, system
}

func convertParts(msg types.ChatMessage) []map[string]any {
	parts := make([]map[string]any, 0, len(msg.Content))
	for _, part := range msg.Content {
		switch p := part.(type) {
		case types.TextPart:
			parts = append(parts, map[string]any{"text": p.Text})
		case types.ImagePart:
			parts = append(parts, convertImagePart(p))
		case types.ToolCallPart:
			parts = append(parts, map[string]any{
				"functionCall": map[string]any{
					"name": p.ToolName,
					"args": p.Arguments,
				},
			})
		case types.ToolResultPart:
			response, _ := p.Result.(map[string]any)
			if response == nil {
				response = map[string]any{"result": p.Result}
			}
			parts = append(parts, map[string]any{
				"functionResponse": map[string]any{
					"name":     p.ToolName,
					"response": response,
				},
			})
		}
	}
	return parts
}

func convertImagePart(p types.ImagePart) map[string]any {
	switch src := p.Source.(type) {
	case types.Base64Source:
		return map[string]any{"inlineData": map[string]any{
			"mimeType": src.MediaType,
			"data":     src.Data,
		}}
	case types.URLSource:
		return map[string]any{"fileData": map[string]any{"fileUri": src.URL}}
	case types.BinarySource:
		return map[string]any{"inlineData": map[string]any{
			"mimeType": src.MediaType,
			"data":     base64.StdEncoding.EncodeToString(src.Bytes),
		}}
	default:
		return map[string]any{}
	}
}

func convertTools(tools []types.Tool) []map[string]any {
	out := make([]map[string]any, len(tools))
	for i, t := range tools {
		out[i] = map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"parameters":  t.Parameters,
		}
	}
	return out
}

func convertToolChoice(tc types.ToolChoice) map[string]any {
	switch tc.Type {
	case types.ToolChoiceNone:
		return map[string]any{"functionCallingConfig": map[string]any{"mode": "NONE"}}
	case types.ToolChoiceRequired:
		return map[string]any{"functionCallingConfig": map[string]any{"mode": "ANY"}}
	case types.ToolChoiceTool:
		return map[string]any{"functionCallingConfig": map[string]any{
			"mode":                 "ANY",
			"allowedFunctionNames": []string{tc.ToolName},
		}}
	default:
		return map[string]any{"functionCallingConfig": map[string]any{"mode": "AUTO"}}
	}
}

type chatResponseTransformer struct{}

func (chatResponseTransformer) TransformChatResponse(raw map[string]any) (types.ChatResponse, error) {
	resp := types.ChatResponse{Model: stringField(raw, "modelVersion")}

	candidates, _ := raw["candidates"].([]any)
	if len(candidates) > 0 {
		candidate, _ := candidates[0].(map[string]any)
		content, _ := candidate["content"].(map[string]any)
		partsRaw, _ := content["parts"].([]any)
		for _, pr := range partsRaw {
			part, _ := pr.(map[string]any)
			resp.Content = append(resp.Content, convertResponsePart(part)...)
		}
		resp.FinishReason = mapFinishReason(stringField(candidate, "finishReason"))
	}

	if usage, ok := raw["usageMetadata"].(map[string]any); ok {
		resp.Usage = convertUsage(usage)
	}

	return resp, nil
}

func convertResponsePart(part map[string]any) []types.ContentPart {
	if part == nil {
		return nil
	}
	if text, ok := part["text"].(string); ok {
		if thought, _ := part["thought"].(bool); thought {
			return []types.ContentPart{types.ReasoningPart{Text: text}}
		}
		return []types.ContentPart{types.TextPart{Text: text}}
	}
	if fc, ok := part["functionCall"].(map[string]any); ok {
		args, _ := fc["args"].(map[string]any)
		return []types.ContentPart{types.ToolCallPart{
			ToolCallID: stringField(fc, "name"),
			ToolName:   stringField(fc, "name"),
			Arguments:  args,
		}}
	}
	return nil
}

func mapFinishReason(reason string) types.FinishReason {
	switch reason {
	case "STOP":
		return types.FinishStop
	case "MAX_TOKENS":
		return types.FinishLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "IMAGE_SAFETY", "SPII":
		return types.FinishContentFilter
	case "":
		return types.FinishUnknown
	default:
		return types.FinishOther
	}
}

func convertUsage(raw map[string]any) types.Usage {
	input := int64Field(raw, "promptTokenCount")
	output := int64Field(raw, "candidatesTokenCount")
	total := int64Field(raw, "totalTokenCount")
	thoughts := int64Field(raw, "thoughtsTokenCount")
	cached := int64Field(raw, "cachedContentTokenCount")

	usage := types.Usage{
		InputTokens:  &input,
		OutputTokens: &output,
		TotalTokens:  &total,
		Raw:          raw,
	}
	if thoughts > 0 {
		usage.OutputDetails = &types.OutputTokenDetails{ReasoningTokens: &thoughts}
	}
	if cached > 0 {
		usage.InputDetails = &types.InputTokenDetails{CacheReadTokens: &cached}
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
