package provider

import (
	"net/http"

	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// RequestTransformer turns a canonical request into the wire body a vendor
// expects.
type RequestTransformer interface {
	TransformChat(req types.ChatRequest) (map[string]any, error)
}

// ResponseTransformer turns a vendor's raw JSON response into the canonical
// shape.
type ResponseTransformer interface {
	TransformChatResponse(raw map[string]any) (types.ChatResponse, error)
}

// EmbeddingTransformer pairs request/response transforms for embeddings.
type EmbeddingTransformer interface {
	TransformEmbeddingRequest(req types.EmbeddingRequest) (map[string]any, error)
	TransformEmbeddingResponse(raw map[string]any) (types.EmbeddingResponse, error)
}

// RerankTransformer pairs request/response transforms for reranking.
type RerankTransformer interface {
	TransformRerankRequest(req types.RerankRequest) (map[string]any, error)
	TransformRerankResponse(raw map[string]any) (types.RerankResponse, error)
}

// FilesTransformer adapts the canonical file-management operations to a
// vendor's envelope (e.g. MiniMaxi's base_resp wrapper).
type FilesTransformer interface {
	TransformFileObject(raw map[string]any) (types.FileObject, error)
}

// ImageTransformer pairs request/response transforms for image generation.
type ImageTransformer interface {
	TransformImageRequest(req types.ImageRequest) (map[string]any, error)
	TransformImageResponse(raw map[string]any) (types.ImageResponse, error)
}

// AudioTransformer pairs request/response transforms for speech synthesis
// and transcription.
type AudioTransformer interface {
	TransformSpeechRequest(req types.SpeechRequest) (map[string]any, error)
	TransformTranscriptionResponse(raw map[string]any) (types.TranscriptionResponse, error)
}

// ChatTransformers bundles the request/response/stream transform for one
// chat-capable model.
type ChatTransformers struct {
	Request    RequestTransformer
	Response   ResponseTransformer
	Converter  streaming.Converter
	StreamMode streaming.Mode

	// CancelNotifier, when non-nil, is invoked once if the caller cancels a
	// stream, after StreamStart has been observed. OpenAI's Responses API
	// uses this to issue a best-effort remote cancel.
	CancelNotifier streaming.CancelNotifier
}

// Spec is the per-vendor policy object: URL construction, header
// construction, and transformer selection. One implementation exists per
// vendor package; pkg/client selects one at construction time.
type Spec interface {
	ID() string
	Capabilities() Capability

	BuildHeaders(ctx Context) (http.Header, error)

	ChatURL(req types.ChatRequest, ctx Context) string
	ChooseChatTransformers(req types.ChatRequest, ctx Context) ChatTransformers

	// ChatExtraHeaders returns headers to merge on top of BuildHeaders for
	// one chat call, for headers whose value depends on the request itself
	// rather than just the client's static context (Anthropic's
	// anthropic-beta header combination depends on thinking mode, MCP
	// servers, and container skills on the request). Returns nil when there
	// is nothing to add; the default UnsupportedSpec implementation always
	// does.
	ChatExtraHeaders(req types.ChatRequest, ctx Context) http.Header

	// ChatBeforeSend lets a spec mutate the already-marshaled wire body in
	// ways a RequestTransformer cannot express cleanly (Anthropic on Vertex
	// removes "model" from the body and adds "anthropic_version"). The
	// default UnsupportedSpec
	// implementation is a no-op passthrough.
	ChatBeforeSend(body map[string]any, req types.ChatRequest, ctx Context) map[string]any

	EmbeddingURL(req types.EmbeddingRequest, ctx Context) string
	ChooseEmbeddingTransformers(req types.EmbeddingRequest, ctx Context) EmbeddingTransformer

	ImageURL(req types.ImageRequest, ctx Context) string
	ChooseImageTransformers(req types.ImageRequest, ctx Context) ImageTransformer

	ModelURL(modelID string, ctx Context) string
	ModelsURL(ctx Context) string

	AudioBaseURL(ctx Context) string
	ChooseAudioTransformers(ctx Context) AudioTransformer

	RerankURL(req types.RerankRequest, ctx Context) string
	ChooseRerankTransformers(req types.RerankRequest, ctx Context) RerankTransformer

	FilesBaseURL(ctx Context) string
	ChooseFilesTransformers(ctx Context) FilesTransformer
}

// UnsupportedSpec is embedded by vendor Spec implementations to satisfy Spec
// for capabilities they do not offer, instead of forcing every vendor package
// to hand-write every method. Its methods return empty URLs, nil
// transformers, nil extra headers and the body unchanged; they return no
// error of their own.
type UnsupportedSpec struct {
	ProviderName string
}

func (u UnsupportedSpec) EmbeddingURL(types.EmbeddingRequest, Context) string { return "" }
func (u UnsupportedSpec) ChooseEmbeddingTransformers(types.EmbeddingRequest, Context) EmbeddingTransformer {
	return nil
}
func (u UnsupportedSpec) RerankURL(types.RerankRequest, Context) string { return "" }
func (u UnsupportedSpec) ChooseRerankTransformers(types.RerankRequest, Context) RerankTransformer {
	return nil
}
func (u UnsupportedSpec) FilesBaseURL(Context) string { return "" }
func (u UnsupportedSpec) ChooseFilesTransformers(Context) FilesTransformer { return nil }

func (u UnsupportedSpec) ChatBeforeSend(body map[string]any, req types.ChatRequest, ctx Context) map[string]any {
	return body
}
func (u UnsupportedSpec) ChatExtraHeaders(types.ChatRequest, Context) http.Header { return nil }
func (u UnsupportedSpec) ImageURL(types.ImageRequest, Context) string { return "" }
func (u UnsupportedSpec) ChooseImageTransformers(types.ImageRequest, Context) ImageTransformer {
	return nil
}
func (u UnsupportedSpec) ModelURL(string, Context) string { return "" }
func (u UnsupportedSpec) ModelsURL(Context) string        { return "" }
func (u UnsupportedSpec) AudioBaseURL(Context) string      { return "" }
func (u UnsupportedSpec) ChooseAudioTransformers(Context) AudioTransformer { return nil }
