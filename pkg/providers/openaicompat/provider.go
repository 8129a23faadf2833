// Package openaicompat implements a single parameterized provider.Spec for
// the many vendors that serve an OpenAI-wire-compatible chat/embeddings
// surface under their own host and auth scheme: Groq, xAI, DeepSeek,
// Together, Fireworks, Cerebras, Moonshot, Mistral, and any other
// OpenAI-compatible endpoint a caller points it at. Grounded on the
// teacher's per-vendor packages (alibaba, baseten, cerebras, deepinfra,
// deepseek, fireworks, huggingface, moonshot, perplexity, together), which
// are all thin copies of the OpenAI provider with a swapped base URL and
// auth header — collapsed here into one Spec factory instead of one package
// per vendor, reusing openai.ChatTransformers()/EmbeddingTransformer()
// wholesale since the wire format genuinely does not vary.
package openaicompat

import (
	"fmt"
	"net/http"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/providers/openai"
	"github.com/corvidai/gollm/pkg/types"
)

// Config parameterizes a Spec for one OpenAI-compatible vendor.
type Config struct {
	// ID names the vendor for provider-error attribution ("groq", "xai", ...).
	ID string

	// DefaultBaseURL is used when the caller's Context.BaseURL is empty.
	DefaultBaseURL string

	// AuthHeader is the header carrying the API key, defaulting to
	// "Authorization" with a "Bearer " prefix when empty.
	AuthHeader string
	AuthPrefix string

	// Capabilities overrides the default Chat|Vision|Embedding set, for
	// vendors missing one of those (e.g. an embeddings-only deployment).
	Capabilities provider.Capability

	// SupportsRerank enables the /rerank executor described in spec.md's
	// OpenAI-compatible rerank section.
	SupportsRerank bool
}

// Spec implements provider.Spec for a configured OpenAI-compatible vendor.
type Spec struct {
	provider.UnsupportedSpec
	cfg Config
}

// New builds a Spec for the given vendor Config.
func New(cfg Config) *Spec {
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = "Authorization"
		cfg.AuthPrefix = "Bearer "
	}
	if cfg.Capabilities == 0 {
		cfg.Capabilities = provider.CapabilityChat | provider.CapabilityVision | provider.CapabilityEmbedding
	}
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: cfg.ID}, cfg: cfg}
}

func (s *Spec) ID() string { return s.cfg.ID }

func (s *Spec) Capabilities() provider.Capability {
	caps := s.cfg.Capabilities
	if s.cfg.SupportsRerank {
		caps = caps.With(provider.CapabilityRerank)
	}
	return caps
}

func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	if !ctx.HasAuthorizationHeader() && ctx.APIKey != nil && !ctx.APIKey.Empty() {
		h.Set(s.cfg.AuthHeader, s.cfg.AuthPrefix+ctx.APIKey.Reveal())
	}
	for k, v := range ctx.ExtraHeaders {
		h.Set(k, v)
	}
	return h, nil
}

func (s *Spec) baseURL(ctx provider.Context) string {
	if ctx.BaseURL != "" {
		return ctx.BaseURL
	}
	return s.cfg.DefaultBaseURL
}

func (s *Spec) ChatURL(req types.ChatRequest, ctx provider.Context) string {
	return s.baseURL(ctx) + "/chat/completions"
}

func (s *Spec) ChooseChatTransformers(req types.ChatRequest, ctx provider.Context) provider.ChatTransformers {
	return openai.ChatTransformers()
}

func (s *Spec) EmbeddingURL(req types.EmbeddingRequest, ctx provider.Context) string {
	return s.baseURL(ctx) + "/embeddings"
}

func (s *Spec) ChooseEmbeddingTransformers(req types.EmbeddingRequest, ctx provider.Context) provider.EmbeddingTransformer {
	return openai.EmbeddingTransformer()
}

func (s *Spec) RerankURL(req types.RerankRequest, ctx provider.Context) string {
	return s.baseURL(ctx) + "/rerank"
}

func (s *Spec) ChooseRerankTransformers(req types.RerankRequest, ctx provider.Context) provider.RerankTransformer {
	return rerankTransformer{}
}

func (s *Spec) ModelURL(modelID string, ctx provider.Context) string {
	return fmt.Sprintf("%s/models/%s", s.baseURL(ctx), modelID)
}

func (s *Spec) ModelsURL(ctx provider.Context) string {
	return s.baseURL(ctx) + "/models"
}
