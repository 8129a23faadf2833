// Package ollama implements provider.Spec for locally-run Ollama servers.
// Grounded on the teacher's pkg/providers/ollama, which proxies Ollama
// through its OpenAI-compatible /v1/chat/completions endpoint; this package
// instead speaks Ollama's native /api/chat (JSON-lines streaming, an
// "options" sub-object instead of top-level sampling params, and a "think"
// flag), per
// original_source/siumai/src/providers/ollama/chat.rs's documented wire
// format, which the teacher's snapshot never touches.
package ollama

import (
	"net/http"
	"strings"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// DefaultBaseURL is Ollama's default local listen address.
const DefaultBaseURL = "http://localhost:11434"

// Spec implements provider.Spec for Ollama.
type Spec struct {
	provider.UnsupportedSpec
}

func New() *Spec {
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "ollama"}}
}

func (s *Spec) ID() string { return "ollama" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityChat | provider.CapabilityEmbedding
}

// BuildHeaders sets JSON content type only; Ollama has no API key auth by
// default, matching the teacher's Config (no Headers beyond Content-Type).
func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	for k, v := range ctx.ExtraHeaders {
		h.Set(k, v)
	}
	return h, nil
}

func (s *Spec) ChatURL(req types.ChatRequest, ctx provider.Context) string {
	return "/api/chat"
}

func (s *Spec) ChooseChatTransformers(req types.ChatRequest, ctx provider.Context) provider.ChatTransformers {
	return chatTransformers()
}

func (s *Spec) EmbeddingURL(req types.EmbeddingRequest, ctx provider.Context) string {
	return "/api/embed"
}

func (s *Spec) ChooseEmbeddingTransformers(req types.EmbeddingRequest, ctx provider.Context) provider.EmbeddingTransformer {
	return embeddingTransformer{}
}

func (s *Spec) ModelURL(modelID string, ctx provider.Context) string {
	return "/api/show"
}

func (s *Spec) ModelsURL(ctx provider.Context) string {
	return "/api/tags"
}

func modelIDFromRequest(req types.ChatRequest) string {
	if req.Telemetry != nil {
		if id, ok := req.Telemetry.Metadata["modelID"].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// isThinkingModel guesses whether a model supports Ollama's "think" field
// from its name, matching chat.rs's fallback heuristic for deepseek-r1 and
// qwen3 family models when the caller hasn't set OllamaOptions.Think
// explicitly.
func isThinkingModel(modelID string) bool {
	return strings.Contains(modelID, "deepseek-r1") || strings.Contains(modelID, "qwen3")
}
