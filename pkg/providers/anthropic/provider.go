// Package anthropic implements provider.Spec for Anthropic's Messages API,
// grounded on the teacher's pkg/providers/anthropic package: the same
// request-body construction, response conversion, and beta-header
// combination rules, generalized off the teacher's fixed GenerateOptions
// onto the shared ChatRequest/ChatResponse canonical shape.
package anthropic

import (
	"net/http"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// DefaultBaseURL is Anthropic's public API base, matching the teacher's
// provider.go constant.
const DefaultBaseURL = "https://api.anthropic.com"

// DefaultAPIVersion is the anthropic-version header value, matching the
// teacher's provider.go constant.
const DefaultAPIVersion = "2023-06-01"

// Spec implements provider.Spec for Anthropic.
type Spec struct {
	provider.UnsupportedSpec

	// APIVersion overrides the anthropic-version header. Empty uses
	// DefaultAPIVersion.
	APIVersion string
}

// New builds an Anthropic Spec.
func New() *Spec {
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "anthropic"}}
}

func (s *Spec) ID() string { return "anthropic" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityChat | provider.CapabilityVision | provider.CapabilityFileManagement
}

func (s *Spec) apiVersion() string {
	if s.APIVersion != "" {
		return s.APIVersion
	}
	return DefaultAPIVersion
}

// BuildHeaders sets x-api-key auth plus the anthropic-version header,
// matching the teacher's Provider.New header construction.
func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	if ctx.APIKey != nil && !ctx.APIKey.Empty() {
		h.Set("x-api-key", ctx.APIKey.Reveal())
	}
	h.Set("anthropic-version", s.apiVersion())
	for k, v := range ctx.ExtraHeaders {
		h.Set(k, v)
	}
	return h, nil
}

func (s *Spec) ChatURL(req types.ChatRequest, ctx provider.Context) string {
	return "/v1/messages"
}

func (s *Spec) ChooseChatTransformers(req types.ChatRequest, ctx provider.Context) provider.ChatTransformers {
	return chatTransformers()
}

// ChatExtraHeaders adds anthropic-beta when the request's options, tools, or
// streaming mode require a beta feature, ported from the teacher's
// combineBetaHeaders/getBetaHeaders.
func (s *Spec) ChatExtraHeaders(req types.ChatRequest, ctx provider.Context) http.Header {
	beta := combineBetaHeaders(req)
	if beta == "" {
		return nil
	}
	h := http.Header{}
	h.Set("anthropic-beta", beta)
	return h
}

func (s *Spec) FilesBaseURL(ctx provider.Context) string {
	return "/v1/files"
}

func (s *Spec) ChooseFilesTransformers(ctx provider.Context) provider.FilesTransformer {
	return filesTransformer{}
}
