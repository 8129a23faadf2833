// Package gemini implements provider.Spec for Google's Generative Language
// API. Grounded on the teacher's pkg/providers/google package (provider.go's
// header/URL construction, language_model.go's request/response shapes,
// embedding_model.go's embed call), enriched from
// original_source/siumai-provider-gemini and
// original_source/siumai-protocol-gemini/src/standards/gemini/types/generation.rs
// for fields the teacher's snapshot omits (thinkingConfig, safetySettings,
// cachedContent, the embedContent/batchEmbedContents URL split).
package gemini

import (
	"net/http"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// DefaultBaseURL is Gemini's public API base, matching the teacher's
// provider.go constant.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Spec implements provider.Spec for Gemini.
type Spec struct {
	provider.UnsupportedSpec
}

// New builds a Gemini Spec.
func New() *Spec {
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "gemini"}}
}

func (s *Spec) ID() string { return "gemini" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityChat | provider.CapabilityVision |
		provider.CapabilityEmbedding | provider.CapabilityFileManagement |
		provider.CapabilityImageGeneration
}

// BuildHeaders sets x-goog-api-key auth, skipped when the caller already
// supplied an Authorization header (OAuth bearer token), matching the
// original source's gemini_headers_skip_api_key_with_bearer contract.
func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if !ctx.HasAuthorizationHeader() && ctx.APIKey != nil && !ctx.APIKey.Empty() {
		h.Set("x-goog-api-key", ctx.APIKey.Reveal())
	}
	for k, v := range ctx.ExtraHeaders {
		h.Set(k, v)
	}
	return h, nil
}

func (s *Spec) ChatURL(req types.ChatRequest, ctx provider.Context) string {
	action := "generateContent"
	if req.Stream {
		action = "streamGenerateContent?alt=sse"
	}
	return "/v1beta/models/" + modelIDFromRequest(req) + ":" + action
}

func (s *Spec) ChooseChatTransformers(req types.ChatRequest, ctx provider.Context) provider.ChatTransformers {
	return chatTransformers()
}

func (s *Spec) FilesBaseURL(ctx provider.Context) string {
	return "/v1beta/files"
}

func (s *Spec) ChooseFilesTransformers(ctx provider.Context) provider.FilesTransformer {
	return filesTransformer{}
}

func (s *Spec) ModelURL(modelID string, ctx provider.Context) string {
	if modelID == "" {
		return "/v1beta/models"
	}
	return "/v1beta/models/" + modelID
}

func (s *Spec) ModelsURL(ctx provider.Context) string {
	return "/v1beta/models"
}

func modelIDFromRequest(req types.ChatRequest) string {
	if req.Telemetry != nil {
		if id, ok := req.Telemetry.Metadata["modelID"].(string); ok && id != "" {
			return id
		}
	}
	return ""
}
