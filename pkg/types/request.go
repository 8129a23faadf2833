package types

// CommonParams holds the generation parameters shared across every chat
// provider. Fields are pointers so "unset" is distinguishable from the
// provider's zero value.
type CommonParams struct {
	Temperature      *float64
	MaxTokens        *int64
	TopP             *float64
	TopK             *int64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	StopSequences    []string
	Seed             *int64
}

// ProviderOptions is a closed interface realizing the spec's tagged union of
// per-vendor request options as Go's typed-interface idiom: exactly one
// concrete type implements it per vendor, selected by the caller.
type ProviderOptions interface {
	isProviderOptions()
}

type OpenAIOptions struct {
	ReasoningEffort     string
	ParallelToolCalls   *bool
	ServiceTier         string
	LogitBias           map[string]int
	ResponsesAPI        bool
}

func (OpenAIOptions) isProviderOptions() {}

type AnthropicOptions struct {
	Thinking               *AnthropicThinking
	CacheControl           bool
	AutomaticCaching       bool
	DisableParallelToolUse *bool
	Speed                  string
	Effort                 string
	ResponseFormat         map[string]any
	ContextManagement      map[string]any
	MCPServers             []map[string]any
	Container              *AnthropicContainer
	ContainerID            string

	// ToolStreaming disables Anthropic's fine-grained tool streaming beta
	// when explicitly set to false. Nil (the common case) leaves it on.
	ToolStreaming *bool
}

func (AnthropicOptions) isProviderOptions() {}

// AnthropicThinking configures extended-thinking mode.
type AnthropicThinking struct {
	Type         string
	BudgetTokens int64
}

// AnthropicContainer configures a code-execution container and its skills.
type AnthropicContainer struct {
	ID     string
	Skills []AnthropicSkill
}

// AnthropicSkill references an agent skill loaded into a container.
type AnthropicSkill struct {
	ID      string
	Version string
}

type GeminiOptions struct {
	SafetySettings    []map[string]any
	ThinkingBudget     *int64
	CachedContent      string
}

func (GeminiOptions) isProviderOptions() {}

type XAIOptions struct {
	SearchParameters map[string]any
}

func (XAIOptions) isProviderOptions() {}

type GroqOptions struct {
	ServiceTier string
}

func (GroqOptions) isProviderOptions() {}

type OllamaOptions struct {
	KeepAlive string
	NumCtx    *int64

	// Think forces the "think" field on or off. Nil defers to a per-model
	// heuristic (see ollama.isThinkingModel).
	Think *bool

	// Format requests structured output: "json" for free-form JSON mode, or
	// a JSON Schema object for constrained decoding.
	Format any
}

func (OllamaOptions) isProviderOptions() {}

// CustomOptions is an escape hatch for OpenAI-compatible vendors with no
// dedicated options type.
type CustomOptions struct {
	Values map[string]any
}

func (CustomOptions) isProviderOptions() {}

// HTTPConfig overrides transport behavior for a single request.
type HTTPConfig struct {
	Timeout       int64
	ExtraHeaders  map[string]string
	MaxRetries    *int
}

// TelemetrySettings controls span emission for a single request.
type TelemetrySettings struct {
	Enabled      bool
	FunctionID   string
	Metadata     map[string]any
}

// ChatRequest is the canonical, provider-independent representation of a
// chat completion request.
type ChatRequest struct {
	Messages        []ChatMessage
	Tools           []Tool
	ToolChoice      *ToolChoice
	CommonParams    CommonParams
	ProviderOptions ProviderOptions
	HTTPConfig      *HTTPConfig
	Stream          bool
	Telemetry       *TelemetrySettings
}
