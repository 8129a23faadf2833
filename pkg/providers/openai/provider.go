// Package openai implements provider.Spec for OpenAI's Chat Completions and
// Responses APIs. Grounded on the teacher's pkg/providers/openai package
// (provider.go's header construction, language_model.go's request/response
// shapes), generalized off the teacher's single fixed endpoint onto the
// dual chat-url selection spec.md names.
package openai

import (
	"fmt"
	"net/http"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// DefaultBaseURL is OpenAI's public API base, matching the teacher's
// provider.go constant.
const DefaultBaseURL = "https://api.openai.com/v1"

// Spec implements provider.Spec for OpenAI.
type Spec struct {
	provider.UnsupportedSpec
}

// New builds an OpenAI Spec. There is no per-instance state: base URL,
// organization, and project all travel on provider.Context, built once by
// the caller and threaded through every call.
func New() *Spec {
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "openai"}}
}

func (s *Spec) ID() string { return "openai" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityChat | provider.CapabilityVision | provider.CapabilityEmbedding
}

// BuildHeaders sets Bearer auth plus the optional organization/project
// headers, matching the teacher's provider.New header construction.
func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	if ctx.APIKey != nil && !ctx.APIKey.Empty() {
		h.Set("Authorization", "Bearer "+ctx.APIKey.Reveal())
	}
	if ctx.Organization != "" {
		h.Set("OpenAI-Organization", ctx.Organization)
	}
	if ctx.Project != "" {
		h.Set("OpenAI-Project", ctx.Project)
	}
	for k, v := range ctx.ExtraHeaders {
		h.Set(k, v)
	}
	return h, nil
}

func usesResponsesAPI(req types.ChatRequest) bool {
	opts, ok := req.ProviderOptions.(types.OpenAIOptions)
	return ok && opts.ResponsesAPI
}

// ChatURL routes to either Chat Completions or the Responses API depending
// on the caller's OpenAIOptions.ResponsesAPI flag.
func (s *Spec) ChatURL(req types.ChatRequest, ctx provider.Context) string {
	if usesResponsesAPI(req) {
		return "/responses"
	}
	return "/chat/completions"
}

// ChooseChatTransformers selects the Chat Completions or Responses API
// transformer bundle for req.
func (s *Spec) ChooseChatTransformers(req types.ChatRequest, ctx provider.Context) provider.ChatTransformers {
	if usesResponsesAPI(req) {
		return responsesTransformers(ctx)
	}
	return chatTransformers()
}

func (s *Spec) ModelURL(modelID string, ctx provider.Context) string {
	return fmt.Sprintf("/models/%s", modelID)
}

func (s *Spec) ModelsURL(ctx provider.Context) string { return "/models" }
