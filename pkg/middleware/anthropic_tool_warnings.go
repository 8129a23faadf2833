package middleware

import (
	"context"
	"fmt"

	"github.com/corvidai/gollm/pkg/types"
)

// anthropicSupportedProviderDefinedTools lists every Anthropic server tool
// id this module recognizes, ported verbatim from
// is_supported_provider_defined_tool_id in the original siumai crate's
// tool_warnings middleware.
var anthropicSupportedProviderDefinedTools = map[string]bool{
	"web_search_20250305":        true,
	"web_fetch_20250910":         true,
	"computer_20250124":          true,
	"computer_20241022":          true,
	"text_editor_20250124":       true,
	"text_editor_20241022":       true,
	"text_editor_20250429":       true,
	"text_editor_20250728":       true,
	"bash_20241022":              true,
	"bash_20250124":              true,
	"tool_search_regex_20251119": true,
	"tool_search_bm25_20251119":  true,
	"code_execution_20250522":    true,
	"code_execution_20250825":    true,
	"memory_20250818":            true,
}

// anthropicModelMaxOutputTokens is a small known-model table; models absent
// from it are not capped (mirrors try_get_max_output_tokens returning None
// for unknown models).
var anthropicModelMaxOutputTokens = map[string]int64{
	"claude-opus-4-6":   32000,
	"claude-sonnet-4-6": 64000,
	"claude-opus-4-5":   32000,
	"claude-sonnet-4-5": 64000,
	"claude-haiku-4-5":  64000,
	"claude-opus-4-1":   32000,
}

// NewAnthropicToolWarnings builds the post-generate/on-stream-event
// middleware that attaches Vercel-AI-SDK-parity warnings to every Anthropic
// response: unsupported standardized settings, thinking-mode
// incompatibilities, the max-output-tokens cap, unsupported provider-defined
// tools, and the 4-cache-breakpoint limit. Grounded verbatim on
// tool_warnings.rs's compute_warnings/merge_warnings.
func NewAnthropicToolWarnings() Middleware {
	return Middleware{
		Name: "anthropic-tool-warnings",
		PostGenerate: func(_ context.Context, req types.ChatRequest, resp types.ChatResponse) (types.ChatResponse, error) {
			resp.Warnings = mergeWarnings(resp.Warnings, computeAnthropicWarnings(req))
			return resp, nil
		},
		OnStreamEvent: func(_ context.Context, req types.ChatRequest, event types.ChatStreamEvent) ([]types.ChatStreamEvent, error) {
			end, ok := event.(types.StreamEnd)
			if !ok {
				return []types.ChatStreamEvent{event}, nil
			}
			end.Warnings = mergeWarnings(end.Warnings, computeAnthropicWarnings(req))
			return []types.ChatStreamEvent{end}, nil
		},
	}
}

func mergeWarnings(existing, additional []types.Warning) []types.Warning {
	if len(additional) == 0 {
		return existing
	}
	return append(existing, additional...)
}

func computeAnthropicWarnings(req types.ChatRequest) []types.Warning {
	var warnings []types.Warning

	opts, _ := req.ProviderOptions.(types.AnthropicOptions)

	thinkingEnabled := opts.Thinking != nil && opts.Thinking.Type == "enabled"
	var thinkingBudget *int64
	if thinkingEnabled {
		if opts.Thinking.BudgetTokens > 0 {
			b := opts.Thinking.BudgetTokens
			thinkingBudget = &b
		} else {
			b := int64(1024)
			thinkingBudget = &b
		}
	}

	cp := req.CommonParams
	if cp.FrequencyPenalty != nil {
		warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "frequencyPenalty"})
	}
	if cp.PresencePenalty != nil {
		warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "presencePenalty"})
	}
	if cp.Seed != nil {
		warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "seed"})
	}

	if cp.Temperature != nil {
		t := *cp.Temperature
		switch {
		case t > 1.0:
			warnings = append(warnings, types.Warning{
				Type:    types.WarningUnsupportedSetting,
				Message: fmt.Sprintf("temperature: %v exceeds anthropic maximum of 1.0. clamped to 1.0", t),
			})
		case t < 0.0:
			warnings = append(warnings, types.Warning{
				Type:    types.WarningUnsupportedSetting,
				Message: fmt.Sprintf("temperature: %v is below anthropic minimum of 0. clamped to 0", t),
			})
		}
	}

	if thinkingEnabled {
		if opts.Thinking.BudgetTokens == 0 {
			warnings = append(warnings, types.Warning{
				Type:    types.WarningUnsupportedSetting,
				Message: "extended thinking: thinking budget is required when thinking is enabled. using default budget of 1024 tokens.",
			})
		}
		if cp.Temperature != nil {
			warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "temperature is not supported when thinking is enabled"})
		}
		if cp.TopK != nil {
			warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "topK is not supported when thinking is enabled"})
		}
		if cp.TopP != nil {
			warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "topP is not supported when thinking is enabled"})
		}
	} else if cp.Temperature != nil && cp.TopP != nil {
		warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedSetting, Message: "topP is not supported when temperature is set. topP is ignored."})
	}

	if maxOut, ok := anthropicModelMaxOutputTokens[modelIDFromRequest(req)]; ok && cp.MaxTokens != nil {
		budget := int64(0)
		if thinkingBudget != nil {
			budget = *thinkingBudget
		}
		effective := *cp.MaxTokens + budget
		if effective > maxOut {
			warnings = append(warnings, types.Warning{
				Type: types.WarningUnsupportedSetting,
				Message: fmt.Sprintf(
					"maxOutputTokens: %d (maxOutputTokens + thinkingBudget) is greater than %d max output tokens. The max output tokens have been limited to %d.",
					effective, maxOut, maxOut,
				),
			})
		}
	}

	if len(req.Tools) == 0 {
		return warnings
	}

	for _, tool := range req.Tools {
		if !tool.ProviderExecuted {
			continue
		}
		if !anthropicSupportedProviderDefinedTools[tool.Name] {
			warnings = append(warnings, types.Warning{Type: types.WarningUnsupportedTool, Message: tool.Name})
		}
	}

	if count := cacheControlBreakpointCount(req.Tools); count > 4 {
		warnings = append(warnings, types.Warning{
			Type: types.WarningUnsupportedSetting,
			Message: fmt.Sprintf(
				"cacheControl breakpoint limit: Maximum 4 cache breakpoints exceeded (found %d). This breakpoint will be ignored.",
				count,
			),
		})
	}

	return warnings
}

func cacheControlBreakpointCount(tools []types.Tool) int {
	count := 0
	for _, tool := range tools {
		anthropicOpts, ok := tool.ProviderOptions["anthropic"].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := anthropicOpts["cacheControl"]; ok {
			count++
			continue
		}
		if _, ok := anthropicOpts["cache_control"]; ok {
			count++
		}
	}
	return count
}

// modelIDFromRequest reads the model id from the request's
// Telemetry.Metadata["modelID"], which the caller supplies (pkg/client does
// not set it); falls back to "" (no cap applied) when absent.
func modelIDFromRequest(req types.ChatRequest) string {
	if req.Telemetry == nil || req.Telemetry.Metadata == nil {
		return ""
	}
	if id, ok := req.Telemetry.Metadata["modelID"].(string); ok {
		return id
	}
	return ""
}
