package types

// Usage reports token consumption for a chat request, broken down into the
// cache and reasoning token detail that Anthropic and OpenAI both expose.
// Pointer fields distinguish "zero" from "the provider did not report this".
type Usage struct {
	InputTokens  *int64
	OutputTokens *int64
	TotalTokens  *int64

	InputDetails  *InputTokenDetails
	OutputDetails *OutputTokenDetails

	// Raw preserves the provider's original usage object for callers that
	// need a field this struct does not normalize.
	Raw map[string]any
}

// InputTokenDetails splits input tokens by cache behavior.
type InputTokenDetails struct {
	NoCacheTokens   *int64
	CacheReadTokens *int64
	CacheWriteTokens *int64
}

// OutputTokenDetails splits output tokens by kind.
type OutputTokenDetails struct {
	TextTokens      *int64
	ReasoningTokens *int64
}

func int64ptr(v int64) *int64 { return &v }

func addInt64Ptr(a, b *int64) *int64 {
	if a == nil && b == nil {
		return nil
	}
	var av, bv int64
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return int64ptr(av + bv)
}

// Add merges another Usage into a copy of this one, summing every field that
// either side reports.
func (u Usage) Add(other Usage) Usage {
	out := Usage{
		InputTokens:  addInt64Ptr(u.InputTokens, other.InputTokens),
		OutputTokens: addInt64Ptr(u.OutputTokens, other.OutputTokens),
		TotalTokens:  addInt64Ptr(u.TotalTokens, other.TotalTokens),
	}
	if u.InputDetails != nil || other.InputDetails != nil {
		a, b := emptyInputDetails(u.InputDetails), emptyInputDetails(other.InputDetails)
		out.InputDetails = &InputTokenDetails{
			NoCacheTokens:    addInt64Ptr(a.NoCacheTokens, b.NoCacheTokens),
			CacheReadTokens:  addInt64Ptr(a.CacheReadTokens, b.CacheReadTokens),
			CacheWriteTokens: addInt64Ptr(a.CacheWriteTokens, b.CacheWriteTokens),
		}
	}
	if u.OutputDetails != nil || other.OutputDetails != nil {
		a, b := emptyOutputDetails(u.OutputDetails), emptyOutputDetails(other.OutputDetails)
		out.OutputDetails = &OutputTokenDetails{
			TextTokens:      addInt64Ptr(a.TextTokens, b.TextTokens),
			ReasoningTokens: addInt64Ptr(a.ReasoningTokens, b.ReasoningTokens),
		}
	}
	return out
}

func emptyInputDetails(d *InputTokenDetails) InputTokenDetails {
	if d == nil {
		return InputTokenDetails{}
	}
	return *d
}

func emptyOutputDetails(d *OutputTokenDetails) OutputTokenDetails {
	if d == nil {
		return OutputTokenDetails{}
	}
	return *d
}

// GetInputTokens returns 0 when InputTokens is unset.
func (u Usage) GetInputTokens() int64 {
	if u.InputTokens == nil {
		return 0
	}
	return *u.InputTokens
}

// GetOutputTokens returns 0 when OutputTokens is unset.
func (u Usage) GetOutputTokens() int64 {
	if u.OutputTokens == nil {
		return 0
	}
	return *u.OutputTokens
}

// GetTotalTokens returns InputTokens+OutputTokens when TotalTokens itself is
// unset but both operands are known.
func (u Usage) GetTotalTokens() int64 {
	if u.TotalTokens != nil {
		return *u.TotalTokens
	}
	return u.GetInputTokens() + u.GetOutputTokens()
}

// EmbeddingUsage reports token consumption for an embedding request.
type EmbeddingUsage struct {
	InputTokens int64
	TotalTokens int64
}

// ImageUsage reports consumption for an image generation request.
type ImageUsage struct {
	ImageCount int
}

// SpeechUsage reports consumption for a text-to-speech request.
type SpeechUsage struct {
	CharacterCount int64
}

// TranscriptionUsage reports consumption for a speech-to-text request.
type TranscriptionUsage struct {
	DurationSeconds float64
}

// WarningType classifies a non-fatal Warning.
type WarningType string

const (
	WarningUnsupportedSetting    WarningType = "unsupported-setting"
	WarningUnsupportedTool       WarningType = "unsupported-tool"
	WarningOther                 WarningType = "other"
)

// Warning is a non-fatal condition surfaced alongside a ChatResponse, e.g. a
// provider silently dropping an unsupported parameter.
type Warning struct {
	Type    WarningType
	Message string
}

// FinishReason normalizes why a model stopped generating.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content-filter"
	FinishToolCalls     FinishReason = "tool-calls"
	FinishError         FinishReason = "error"
	FinishOther         FinishReason = "other"
	FinishUnknown       FinishReason = "unknown"
)

// ResponseMetadata carries response-identifying fields common across
// providers.
type ResponseMetadata struct {
	ModelID          string
	ID               string
	Timestamp        int64
	ProviderMetadata map[string]any
}
