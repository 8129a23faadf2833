// Package anthropicvertex implements provider.Spec for Anthropic models
// served through Vertex AI's publisher-model endpoints. It reuses the
// anthropic package's Messages API request/response/stream transformers
// wholesale and only varies URL construction, auth, and the two
// Vertex-specific body fields, grounded on
// original_source/siumai-provider-anthropic/src/providers/anthropic_vertex/client.rs
// (no teacher Go package covers Vertex Anthropic; this is new code grounded
// on the original source, written in the anthropic package's idiom).
package anthropicvertex

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/providers/anthropic"
	"github.com/corvidai/gollm/pkg/types"
)

// AnthropicVertexVersion is the fixed anthropic_version body field Vertex
// requires in place of the anthropic-version header the public API uses.
const AnthropicVertexVersion = "vertex-2023-10-16"

// Spec implements provider.Spec for Anthropic-on-Vertex. Project and
// Location configure the publisher-model URL; Context.BaseURL overrides the
// default regional Vertex host when set.
type Spec struct {
	provider.UnsupportedSpec

	Project  string
	Location string
}

// New builds a Vertex Anthropic Spec for the given GCP project and region.
func New(project, location string) *Spec {
	return &Spec{
		UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "anthropic-vertex"},
		Project:         project,
		Location:        location,
	}
}

func (s *Spec) ID() string { return "anthropic-vertex" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityChat | provider.CapabilityVision
}

func (s *Spec) defaultBaseURL() string {
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com", s.Location)
}

// BuildHeaders sets Bearer auth from a GCP access token. Vertex has no
// anthropic-version header; the version travels in the request body instead
// (see ChatBeforeSend).
func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	if !ctx.HasAuthorizationHeader() && ctx.APIKey != nil && !ctx.APIKey.Empty() {
		h.Set("Authorization", "Bearer "+ctx.APIKey.Reveal())
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
	return s.defaultBaseURL()
}

func (s *Spec) project(ctx provider.Context) string {
	if s.Project != "" {
		return s.Project
	}
	return ctx.Project
}

// ChatURL builds the publisher-model :rawPredict (or :streamRawPredict)
// path, ported from client.rs's hardcoded endpoint shape.
func (s *Spec) ChatURL(req types.ChatRequest, ctx provider.Context) string {
	action := "rawPredict"
	if req.Stream {
		action = "streamRawPredict"
	}
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/anthropic/models/%s:%s",
		s.baseURL(ctx), s.project(ctx), s.Location, modelIDFromRequest(req), action)
}

func (s *Spec) ChooseChatTransformers(req types.ChatRequest, ctx provider.Context) provider.ChatTransformers {
	return anthropic.ChatTransformers()
}

// ChatExtraHeaders delegates to the anthropic package's beta-header logic:
// Vertex accepts the same anthropic-beta header as the public API for
// features gated behind it.
func (s *Spec) ChatExtraHeaders(req types.ChatRequest, ctx provider.Context) http.Header {
	return (&anthropic.Spec{}).ChatExtraHeaders(req, ctx)
}

// ChatBeforeSend strips the "model" field the anthropic request transformer
// set (Vertex infers the model from the URL path) and sets the required
// anthropic_version field in its place, ported from the Vertex publisher
// API's documented body shape.
func (s *Spec) ChatBeforeSend(body map[string]any, req types.ChatRequest, ctx provider.Context) map[string]any {
	delete(body, "model")
	body["anthropic_version"] = AnthropicVertexVersion
	return body
}

func (s *Spec) ModelsURL(ctx provider.Context) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/anthropic/models",
		s.baseURL(ctx), s.project(ctx), s.Location)
}

func (s *Spec) ModelURL(modelID string, ctx provider.Context) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/anthropic/models/%s",
		s.baseURL(ctx), s.project(ctx), s.Location, modelID)
}

func modelIDFromRequest(req types.ChatRequest) string {
	if req.Telemetry != nil {
		if id, ok := req.Telemetry.Metadata["modelID"].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// ParseModelID extracts the trailing id from a Vertex model resource name
// ("publishers/anthropic/models/claude-3-5-sonnet" -> "claude-3-5-sonnet"),
// ported from client.rs's parse_model_id.
func ParseModelID(name string) string {
	if idx := strings.LastIndex(name, "/models/"); idx >= 0 {
		return name[idx+len("/models/"):]
	}
	return name
}
