// Package minimaxi implements provider.Spec for MiniMaxi's file-management
// API. MiniMaxi's chat surface is separately OpenAI-compatible (served via
// openaicompat); this package only covers the dedicated Files API, which
// wraps every response in a base_resp{status_code,status_msg} envelope and
// restricts upload purpose to a closed set, per
// original_source/siumai-provider-minimaxi/src/providers/minimaxi/files.rs.
// No teacher package covers MiniMaxi; this is new code grounded on the
// original source, written in the openai package's header-building idiom.
package minimaxi

import (
	"net/http"

	"github.com/corvidai/gollm/pkg/provider"
)

// DefaultBaseURL is MiniMaxi's API root, per resolve_api_root_base_url.
const DefaultBaseURL = "https://api.minimaxi.com/v1"

// Spec implements provider.Spec for MiniMaxi file management.
type Spec struct {
	provider.UnsupportedSpec
}

func New() *Spec {
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "minimaxi"}}
}

func (s *Spec) ID() string { return "minimaxi" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityFileManagement
}

// BuildHeaders sets Bearer auth plus the OpenAI-Organization/OpenAI-Project
// headers, ported verbatim from MinimaxiFilesSpec::build_headers (MiniMaxi's
// file API accepts these even though it has no OpenAI lineage otherwise).
func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
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

// FilesBaseURL points at the upload endpoint; List/Retrieve/Delete use
// their own fixed paths under the same root (see DESIGN.md for how this
// interacts with pkg/client's generic REST-shaped filesHandle).
func (s *Spec) FilesBaseURL(ctx provider.Context) string {
	base := ctx.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/files/upload"
}

func (s *Spec) ChooseFilesTransformers(ctx provider.Context) provider.FilesTransformer {
	return filesTransformer{}
}
