package types

// ChatResponse is the canonical, provider-independent chat completion
// result of a non-streaming chat call.
type ChatResponse struct {
	ID               string
	Content          []ContentPart
	Model            string
	Usage            Usage
	FinishReason     FinishReason
	Warnings         []Warning
	ProviderMetadata map[string]map[string]any
}

// Text concatenates every TextPart in the response content.
func (r ChatResponse) Text() string {
	var out string
	for _, part := range r.Content {
		if t, ok := part.(TextPart); ok {
			out += t.Text
		}
	}
	return out
}

// ToolCalls extracts every ToolCallPart from the response content as a
// ToolCall.
func (r ChatResponse) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, part := range r.Content {
		if c, ok := part.(ToolCallPart); ok {
			calls = append(calls, ToolCall{ID: c.ToolCallID, ToolName: c.ToolName, Arguments: c.Arguments})
		}
	}
	return calls
}

// ChatStreamEvent is a closed interface over the unified streaming event
// set. pkg/streaming.Stream guarantees exactly one StreamStart before any
// other variant and, on success, exactly one StreamEnd terminating the
// sequence, regardless of which provider produced the underlying events. A
// stream that fails ends without StreamEnd and reports the error through
// Stream.Err.
type ChatStreamEvent interface {
	isChatStreamEvent()
}

// StreamStart is always the first event of a stream.
type StreamStart struct {
	ID               string
	Model            string
	ProviderMetadata map[string]any
}

func (StreamStart) isChatStreamEvent() {}

// ContentDelta is an incremental text chunk.
type ContentDelta struct {
	Text string
}

func (ContentDelta) isChatStreamEvent() {}

// ThinkingDelta is an incremental reasoning/thinking chunk.
type ThinkingDelta struct {
	Text string
}

func (ThinkingDelta) isChatStreamEvent() {}

// ToolCallDelta reports a fully assembled tool call. Providers that stream
// tool-call arguments incrementally buffer the JSON fragments internally and
// emit exactly one ToolCallDelta per call once its arguments are complete
// and parsed.
type ToolCallDelta struct {
	ToolCall ToolCall
}

func (ToolCallDelta) isChatStreamEvent() {}

// UsageUpdate reports usage, typically once near the end of a stream.
type UsageUpdate struct {
	Usage Usage
}

func (UsageUpdate) isChatStreamEvent() {}

// Custom carries a provider-specific event that does not map onto any other
// variant (e.g. Anthropic's mcp_tool_result).
type Custom struct {
	Name string
	Data map[string]any
}

func (Custom) isChatStreamEvent() {}

// StreamEnd is always the last event of a successful stream.
type StreamEnd struct {
	FinishReason FinishReason
	Usage        Usage
	Warnings     []Warning
}

func (StreamEnd) isChatStreamEvent() {}
