package anthropic

import "github.com/corvidai/gollm/pkg/types"

// Beta header values, each gating one opt-in Anthropic API feature. Dated
// suffixes match Anthropic's versioned-beta convention as documented on the
// teacher's ModelOptions fields; BetaHeaderFastMode, BetaHeaderCompact, and
// BetaHeaderCodeExecution are not spelled out in the teacher's surviving
// source (referenced by its tests but never defined in a non-test file) and
// are extrapolated here using the same dated-slug convention as the
// confirmed headers.
const (
	BetaHeaderContextManagement        = "context-management-2025-01-22"
	BetaHeaderCompact                  = "compact-2026-01-12"
	BetaHeaderFastMode                 = "fast-mode-2025-11-24"
	BetaHeaderPromptCaching            = "prompt-caching-2024-07-31"
	BetaHeaderEffort                   = "effort-2025-11-24"
	BetaHeaderMCPClient                = "mcp-client-2025-04-04"
	BetaHeaderFineGrainedToolStreaming = "fine-grained-tool-streaming-2025-05-14"
	BetaHeaderCodeExecution            = "code-execution-2026-01-20"
	BetaHeaderCodeExecution20250825    = "code-execution-2025-08-25"
	BetaHeaderSkills                   = "skills-2025-10-02"
	BetaHeaderFilesAPI                 = "files-api-2025-04-14"
)

// Tool name constants used to detect code execution tools when building
// beta headers, matching the teacher's unexported constants of the same
// name.
const (
	codeExecution20260120ToolName = "anthropic.code_execution_20260120"
	codeExecution20250825ToolName = "anthropic.code_execution_20250825"
)

// combineBetaHeaders ports the teacher's LanguageModel.combineBetaHeaders
// and getBetaHeaders, generalized off *ModelOptions onto ChatRequest's
// AnthropicOptions and off the separate stream bool onto req.Stream.
func combineBetaHeaders(req types.ChatRequest) string {
	opts, _ := req.ProviderOptions.(types.AnthropicOptions)

	headers := getBetaHeaders(opts)

	// Fine-grained tool streaming: always on by default during streaming,
	// disabled only when ToolStreaming is explicitly set to false.
	if req.Stream {
		enabled := true
		if opts.ToolStreaming != nil {
			enabled = *opts.ToolStreaming
		}
		if enabled {
			headers = appendBeta(headers, BetaHeaderFineGrainedToolStreaming)
		}
	}

	// Detect the code execution tool and inject its required beta header.
	for _, t := range req.Tools {
		if t.Name == codeExecution20260120ToolName {
			headers = appendBeta(headers, BetaHeaderCodeExecution)
			break
		}
	}

	return headers
}

// getBetaHeaders ports the teacher's LanguageModel.getBetaHeaders.
func getBetaHeaders(opts types.AnthropicOptions) string {
	var headers string

	if len(opts.ContextManagement) > 0 {
		headers = appendBeta(headers, BetaHeaderContextManagement)
		if edits, ok := opts.ContextManagement["edits"].([]any); ok {
			for _, e := range edits {
				if edit, ok := e.(map[string]any); ok && edit["type"] == "compact" {
					headers = appendBeta(headers, BetaHeaderCompact)
					break
				}
			}
		}
	}

	if opts.Speed == "fast" {
		headers = appendBeta(headers, BetaHeaderFastMode)
	}

	if opts.AutomaticCaching {
		headers = appendBeta(headers, BetaHeaderPromptCaching)
	}

	if opts.Effort != "" {
		headers = appendBeta(headers, BetaHeaderEffort)
	}

	if len(opts.MCPServers) > 0 {
		headers = appendBeta(headers, BetaHeaderMCPClient)
	}

	if opts.Container != nil && len(opts.Container.Skills) > 0 {
		headers = appendBeta(headers, BetaHeaderCodeExecution20250825)
		headers = appendBeta(headers, BetaHeaderSkills)
		headers = appendBeta(headers, BetaHeaderFilesAPI)
	}

	return headers
}

func appendBeta(existing, header string) string {
	if existing == "" {
		return header
	}
	return existing + "," + header
}
