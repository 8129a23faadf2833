package anthropic

import (
	"encoding/json"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

func chatTransformers() provider.ChatTransformers {
	return provider.ChatTransformers{
		Request:    chatRequestTransformer{},
		Response:   chatResponseTransformer{},
		Converter:  &streamConverter{contentBlocks: make(map[int]*streamContentBlock)},
		StreamMode: streaming.ModeSSE,
	}
}

// ChatTransformers exposes the Messages API request/response/stream
// transform bundle for reuse by anthropicvertex, which sends the same wire
// format to a different URL under different auth.
func ChatTransformers() provider.ChatTransformers {
	return chatTransformers()
}

type chatRequestTransformer struct{}

// TransformChat ports the teacher's LanguageModel.buildRequestBody,
// generalized off *provider.GenerateOptions onto ChatRequest: messages
// convert through convertMessages instead of providerutils/prompt, and
// system instructions are pulled off the first system-role message instead
// of a dedicated Prompt.System field.
func (chatRequestTransformer) TransformChat(req types.ChatRequest) (map[string]any, error) {
	body := map[string]any{
		"model": modelIDFromRequest(req),
	}

	messages, system, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	body["messages"] = messages
	if system != "" {
		body["system"] = system
	}

	maxTokens := int64(4096)
	if req.CommonParams.MaxTokens != nil {
		maxTokens = *req.CommonParams.MaxTokens
	}
	body["max_tokens"] = maxTokens

	opts, _ := req.ProviderOptions.(types.AnthropicOptions)

	// Temperature, top_k, and top_p are incompatible with thinking mode.
	// top_p and temperature are mutually exclusive: only one is sent.
	isThinking := opts.Thinking != nil && opts.Thinking.Type != "disabled"
	if !isThinking {
		if req.CommonParams.Temperature != nil {
			body["temperature"] = *req.CommonParams.Temperature
		}
		if req.CommonParams.TopK != nil {
			body["top_k"] = *req.CommonParams.TopK
		}
		if req.CommonParams.TopP != nil && req.CommonParams.Temperature == nil {
			body["top_p"] = *req.CommonParams.TopP
		}
	}
	if len(req.CommonParams.StopSequences) > 0 {
		body["stop_sequences"] = req.CommonParams.StopSequences
	}

	if len(req.Tools) > 0 {
		body["tools"] = convertTools(req.Tools)
		if req.ToolChoice != nil {
			body["tool_choice"] = convertToolChoice(*req.ToolChoice)
		}
	}

	// disable_parallel_tool_use merges into the existing tool_choice object
	// rather than sitting alongside it as a sibling field.
	if opts.DisableParallelToolUse != nil && *opts.DisableParallelToolUse {
		if existing, ok := body["tool_choice"].(map[string]any); ok {
			existing["disable_parallel_tool_use"] = true
		} else {
			body["tool_choice"] = map[string]any{"disable_parallel_tool_use": true}
		}
	}

	if opts.Thinking != nil {
		thinking := map[string]any{"type": opts.Thinking.Type}
		if opts.Thinking.Type == "enabled" && opts.Thinking.BudgetTokens > 0 {
			thinking["budget_tokens"] = opts.Thinking.BudgetTokens
		}
		body["thinking"] = thinking
	}

	if opts.Speed != "" {
		body["speed"] = opts.Speed
	}

	if len(opts.ContextManagement) > 0 {
		body["context_management"] = opts.ContextManagement
	}

	outputConfig := map[string]any{}
	if opts.Effort != "" {
		outputConfig["effort"] = opts.Effort
	}
	if len(opts.ResponseFormat) > 0 {
		outputConfig["format"] = opts.ResponseFormat
	}
	if len(outputConfig) > 0 {
		body["output_config"] = outputConfig
	}

	// cache_control: explicit CacheControl wins over AutomaticCaching.
	if opts.CacheControl {
		body["cache_control"] = map[string]string{"type": "ephemeral"}
	} else if opts.AutomaticCaching {
		body["cache_control"] = map[string]string{"type": "auto"}
	}

	if len(opts.MCPServers) > 0 {
		body["mcp_servers"] = opts.MCPServers
	}

	// container: ContainerID (string shorthand) takes precedence over
	// Container. Container with skills sends as an object; without skills,
	// as a plain ID string; fully empty, omitted entirely.
	if opts.ContainerID != "" {
		body["container"] = opts.ContainerID
	} else if opts.Container != nil {
		if len(opts.Container.Skills) > 0 {
			containerBody := map[string]any{}
			if opts.Container.ID != "" {
				containerBody["id"] = opts.Container.ID
			}
			skills := make([]map[string]any, len(opts.Container.Skills))
			for i, s := range opts.Container.Skills {
				skill := map[string]any{"type": "anthropic", "skill_id": s.ID}
				if s.Version != "" {
					skill["version"] = s.Version
				}
				skills[i] = skill
			}
			containerBody["skills"] = skills
			body["container"] = containerBody
		} else if opts.Container.ID != "" {
			body["container"] = opts.Container.ID
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

// convertMessages splits ChatMessage history into Anthropic's messages
// array plus a single system string, generalizing the teacher's
// prompt.ToAnthropicMessages off the canonical content-part model: each
// system-role message's text is concatenated into the system field, since
// Anthropic has no system role in its messages array.
func convertMessages(msgs []types.ChatMessage) ([]map[string]any, string, error) {
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

		content, err := convertContent(msg)
		if err != nil {
			return nil, "", err
		}
		role := string(msg.Role)
		if msg.Role == types.RoleTool {
			role = "user"
		}
		out = append(out, map[string]any{"role": role, "content": content})
	}

	return out, system, nil
}

func convertContent(msg types.ChatMessage) ([]map[string]any, error) {
	blocks := make([]map[string]any, 0, len(msg.Content))
	for _, part := range msg.Content {
		switch p := part.(type) {
		case types.TextPart:
			blocks = append(blocks, map[string]any{"type": "text", "text": p.Text})
		case types.ImagePart:
			blocks = append(blocks, map[string]any{"type": "image", "source": convertSource(p.Source)})
		case types.ToolCallPart:
			blocks = append(blocks, map[string]any{
				"type":  "tool_use",
				"id":    p.ToolCallID,
				"name":  p.ToolName,
				"input": p.Arguments,
			})
		case types.ToolResultPart:
			block := map[string]any{
				"type":        "tool_result",
				"tool_use_id": p.ToolCallID,
				"content":     stringifyToolResult(p.Result),
			}
			if p.IsError {
				block["is_error"] = true
			}
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

func convertSource(src types.MediaSource) map[string]any {
	switch s := src.(type) {
	case types.URLSource:
		return map[string]any{"type": "url", "url": s.URL}
	case types.Base64Source:
		return map[string]any{"type": "base64", "media_type": s.MediaType, "data": s.Data}
	default:
		return map[string]any{}
	}
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

// convertTools ports the teacher's ToAnthropicFormatWithCache: base tool
// shape plus a per-tool cache_control lifted from Tool.ProviderOptions.
func convertTools(tools []types.Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		entry := map[string]any{
			"name":         t.Name,
			"description":  t.Description,
			"input_schema": t.Parameters,
		}
		if t.ProviderOptions != nil {
			if anthropicOpts, ok := t.ProviderOptions["anthropic"].(map[string]any); ok {
				if cc, ok := anthropicOpts["cache_control"]; ok {
					entry["cache_control"] = cc
				}
			}
		}
		out = append(out, entry)
	}
	return out
}

func convertToolChoice(tc types.ToolChoice) any {
	switch tc.Type {
	case types.ToolChoiceAuto:
		return map[string]any{"type": "auto"}
	case types.ToolChoiceNone:
		return map[string]any{"type": "none"}
	case types.ToolChoiceRequired:
		return map[string]any{"type": "any"}
	case types.ToolChoiceTool:
		return map[string]any{"type": "tool", "name": tc.ToolName}
	default:
		return map[string]any{"type": "auto"}
	}
}

type chatResponseTransformer struct{}

// TransformChatResponse ports the teacher's convertResponse, with one
// deliberate improvement: the teacher keeps only the first text block
// ("For now, just take first text block"); the canonical ChatResponse.Content
// model has no such restriction, so every text block is preserved in order
// alongside tool calls instead of collapsing to one string.
func (chatResponseTransformer) TransformChatResponse(raw map[string]any) (types.ChatResponse, error) {
	resp := types.ChatResponse{
		ID:    stringField(raw, "id"),
		Model: stringField(raw, "model"),
	}

	content, _ := raw["content"].([]any)
	for _, c := range content {
		block, _ := c.(map[string]any)
		switch stringField(block, "type") {
		case "text":
			resp.Content = append(resp.Content, types.TextPart{Text: stringField(block, "text")})
		case "tool_use", "mcp_tool_use":
			input, _ := block["input"].(map[string]any)
			resp.Content = append(resp.Content, types.ToolCallPart{
				ToolCallID: stringField(block, "id"),
				ToolName:   stringField(block, "name"),
				Arguments:  input,
			})
		}
	}

	resp.FinishReason = mapStopReason(stringField(raw, "stop_reason"))

	if usage, ok := raw["usage"].(map[string]any); ok {
		resp.Usage = convertUsage(usage)
	}

	return resp, nil
}

func mapStopReason(reason string) types.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return types.FinishStop
	case "max_tokens":
		return types.FinishLength
	case "tool_use":
		return types.FinishToolCalls
	case "":
		return types.FinishUnknown
	default:
		return types.FinishOther
	}
}

// convertUsage ports the teacher's convertAnthropicUsage: cache-creation and
// cache-read tokens fold into InputTokens' total, and when an iterations
// breakdown is present (compaction occurred) input/output tokens sum across
// every iteration rather than using the top-level fields, which exclude
// compaction-iteration usage.
func convertUsage(raw map[string]any) types.Usage {
	var inputTokens, outputTokens int64

	if iterations, ok := raw["iterations"].([]any); ok && len(iterations) > 0 {
		for _, it := range iterations {
			iter, _ := it.(map[string]any)
			inputTokens += int64Field(iter, "input_tokens")
			outputTokens += int64Field(iter, "output_tokens")
		}
	} else {
		inputTokens = int64Field(raw, "input_tokens")
		outputTokens = int64Field(raw, "output_tokens")
	}

	cacheCreation := int64Field(raw, "cache_creation_input_tokens")
	cacheRead := int64Field(raw, "cache_read_input_tokens")

	totalInput := inputTokens + cacheCreation + cacheRead
	totalTokens := totalInput + outputTokens

	usage := types.Usage{
		InputTokens:  &totalInput,
		OutputTokens: &outputTokens,
		TotalTokens:  &totalTokens,
		InputDetails: &types.InputTokenDetails{
			NoCacheTokens:    &inputTokens,
			CacheReadTokens:  &cacheRead,
			CacheWriteTokens: &cacheCreation,
		},
		OutputDetails: &types.OutputTokenDetails{
			TextTokens: &outputTokens,
		},
		Raw: raw,
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
