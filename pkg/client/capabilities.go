package client

import (
	"context"

	"github.com/corvidai/gollm/pkg/httpexec"
	"github.com/corvidai/gollm/pkg/provider"
	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/types"
)

// EmbeddingCapability is the typed handle returned by AsEmbedding.
type EmbeddingCapability interface {
	Embed(ctx context.Context, req types.EmbeddingRequest) (types.EmbeddingResponse, error)
}

// RerankCapability is the typed handle returned by AsRerank.
type RerankCapability interface {
	Rerank(ctx context.Context, req types.RerankRequest) (types.RerankResponse, error)
}

// FileManagementCapability is the typed handle returned by AsFileManagement.
type FileManagementCapability interface {
	Upload(ctx context.Context, req types.FileUploadRequest) (types.FileObject, error)
	List(ctx context.Context, req types.FileListRequest) ([]types.FileObject, error)
	Retrieve(ctx context.Context, id string) (types.FileObject, error)
	RetrieveContent(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// AsEmbedding returns the embedding capability handle, or (nil, false) when
// the underlying provider does not support embeddings.
func (c *Client) AsEmbedding() (EmbeddingCapability, bool) {
	if !c.capabilities.Has(provider.CapabilityEmbedding) {
		return nil, false
	}
	h, _ := c.handles[provider.CapabilityEmbedding].(EmbeddingCapability)
	return h, h != nil
}

// AsRerank returns the rerank capability handle, or (nil, false) when
// unsupported.
func (c *Client) AsRerank() (RerankCapability, bool) {
	if !c.capabilities.Has(provider.CapabilityRerank) {
		return nil, false
	}
	h, _ := c.handles[provider.CapabilityRerank].(RerankCapability)
	return h, h != nil
}

// AsFileManagement returns the file-management capability handle, or
// (nil, false) when unsupported.
func (c *Client) AsFileManagement() (FileManagementCapability, bool) {
	if !c.capabilities.Has(provider.CapabilityFileManagement) {
		return nil, false
	}
	h, _ := c.handles[provider.CapabilityFileManagement].(FileManagementCapability)
	return h, h != nil
}

// The remaining capabilities spec.md §4.8 names (Vision, ImageGeneration,
// Speech, Transcription, Moderation, ModelListing, VideoGeneration,
// MusicGeneration) have no provider in this module implementing them, so
// their As* accessors always report unsupported; they are kept as named
// methods so callers can write capability-checking code uniformly across
// every downcast, per the pattern spec.md's §9 recommends.

func (c *Client) AsVision() (VisionCapability, bool) {
	return nil, false
}

func (c *Client) AsImageGeneration() (ImageGenerationCapability, bool) {
	return nil, false
}

func (c *Client) AsSpeech() (SpeechCapability, bool) {
	return nil, false
}

func (c *Client) AsTranscription() (TranscriptionCapability, bool) {
	return nil, false
}

func (c *Client) AsModeration() (ModerationCapability, bool) {
	return nil, false
}

func (c *Client) AsModelListing() (ModelListingCapability, bool) {
	return nil, false
}

func (c *Client) AsVideoGeneration() (VideoGenerationCapability, bool) {
	return nil, false
}

func (c *Client) AsMusicGeneration() (MusicGenerationCapability, bool) {
	return nil, false
}

type VisionCapability interface{ placeholderVision() }
type ImageGenerationCapability interface {
	Generate(ctx context.Context, req types.ImageRequest) (types.ImageResponse, error)
}
type SpeechCapability interface {
	Synthesize(ctx context.Context, req types.SpeechRequest) (types.SpeechResponse, error)
}
type TranscriptionCapability interface {
	Transcribe(ctx context.Context, req types.TranscriptionRequest) (types.TranscriptionResponse, error)
}
type ModerationCapability interface{ placeholderModeration() }
type ModelListingCapability interface {
	ListModels(ctx context.Context) ([]string, error)
}
type VideoGenerationCapability interface{ placeholderVideoGeneration() }
type MusicGenerationCapability interface{ placeholderMusicGeneration() }

// embeddingHandle implements EmbeddingCapability over the shared Client.
type embeddingHandle struct{ c *Client }

func (h *embeddingHandle) Embed(ctx context.Context, req types.EmbeddingRequest) (types.EmbeddingResponse, error) {
	c := h.c
	transformer := c.spec.ChooseEmbeddingTransformers(req, c.ctx)
	if transformer == nil {
		return types.EmbeddingResponse{}, providererrors.NewConfigurationError("embedding not supported by provider "+c.spec.ID(), nil)
	}
	body, err := transformer.TransformEmbeddingRequest(req)
	if err != nil {
		return types.EmbeddingResponse{}, err
	}
	headers, err := c.headers()
	if err != nil {
		return types.EmbeddingResponse{}, err
	}
	url := c.spec.EmbeddingURL(req, c.ctx)
	raw, err := c.exec.ExecuteJSON(ctx, c.spec.ID(), url, headers, body)
	if err != nil {
		return types.EmbeddingResponse{}, err
	}
	decoded, err := httpexec.DecodeJSON(raw)
	if err != nil {
		return types.EmbeddingResponse{}, err
	}
	return transformer.TransformEmbeddingResponse(decoded)
}

// rerankHandle implements RerankCapability over the shared Client.
type rerankHandle struct{ c *Client }

func (h *rerankHandle) Rerank(ctx context.Context, req types.RerankRequest) (types.RerankResponse, error) {
	c := h.c
	transformer := c.spec.ChooseRerankTransformers(req, c.ctx)
	if transformer == nil {
		return types.RerankResponse{}, providererrors.NewConfigurationError("rerank not supported by provider "+c.spec.ID(), nil)
	}
	body, err := transformer.TransformRerankRequest(req)
	if err != nil {
		return types.RerankResponse{}, err
	}
	headers, err := c.headers()
	if err != nil {
		return types.RerankResponse{}, err
	}
	url := c.spec.RerankURL(req, c.ctx)
	raw, err := c.exec.ExecuteJSON(ctx, c.spec.ID(), url, headers, body)
	if err != nil {
		return types.RerankResponse{}, err
	}
	decoded, err := httpexec.DecodeJSON(raw)
	if err != nil {
		return types.RerankResponse{}, err
	}
	return transformer.TransformRerankResponse(decoded)
}

// filesHandle implements FileManagementCapability over the shared Client.
type filesHandle struct{ c *Client }

func (h *filesHandle) Upload(ctx context.Context, req types.FileUploadRequest) (types.FileObject, error) {
	c := h.c
	headers, err := c.headers()
	if err != nil {
		return types.FileObject{}, err
	}
	base := c.spec.FilesBaseURL(c.ctx)
	factory := httpexec.NewMultipartFields("file", req.Name, req.Content, map[string]string{
		"purpose": string(req.Purpose),
	})
	raw, err := c.exec.ExecuteMultipart(ctx, c.spec.ID(), base, headers, factory)
	if err != nil {
		return types.FileObject{}, err
	}
	decoded, err := httpexec.DecodeJSON(raw)
	if err != nil {
		return types.FileObject{}, err
	}
	transformer := c.spec.ChooseFilesTransformers(c.ctx)
	return transformer.TransformFileObject(decoded)
}

func (h *filesHandle) List(ctx context.Context, req types.FileListRequest) ([]types.FileObject, error) {
	c := h.c
	headers, err := c.headers()
	if err != nil {
		return nil, err
	}
	base := c.spec.FilesBaseURL(c.ctx)
	raw, err := c.exec.ExecuteGet(ctx, c.spec.ID(), base, headers, nil)
	if err != nil {
		return nil, err
	}
	var listBody struct {
		Data []map[string]any `json:"data"`
	}
	if err := httpexec.DecodeJSONInto(raw, &listBody); err != nil {
		return nil, err
	}
	transformer := c.spec.ChooseFilesTransformers(c.ctx)
	out := make([]types.FileObject, 0, len(listBody.Data))
	for _, raw := range listBody.Data {
		obj, err := transformer.TransformFileObject(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (h *filesHandle) Retrieve(ctx context.Context, id string) (types.FileObject, error) {
	c := h.c
	headers, err := c.headers()
	if err != nil {
		return types.FileObject{}, err
	}
	base := c.spec.FilesBaseURL(c.ctx)
	raw, err := c.exec.ExecuteGet(ctx, c.spec.ID(), base+"/"+id, headers, nil)
	if err != nil {
		return types.FileObject{}, err
	}
	decoded, err := httpexec.DecodeJSON(raw)
	if err != nil {
		return types.FileObject{}, err
	}
	transformer := c.spec.ChooseFilesTransformers(c.ctx)
	return transformer.TransformFileObject(decoded)
}

func (h *filesHandle) RetrieveContent(ctx context.Context, id string) ([]byte, error) {
	c := h.c
	headers, err := c.headers()
	if err != nil {
		return nil, err
	}
	base := c.spec.FilesBaseURL(c.ctx)
	raw, err := c.exec.ExecuteGetBinary(ctx, c.spec.ID(), base+"/"+id+"/content", headers)
	if err != nil {
		return nil, err
	}
	return raw.Body, nil
}

func (h *filesHandle) Delete(ctx context.Context, id string) error {
	c := h.c
	headers, err := c.headers()
	if err != nil {
		return err
	}
	base := c.spec.FilesBaseURL(c.ctx)
	_, err = c.exec.ExecuteDelete(ctx, c.spec.ID(), base+"/"+id, headers)
	return err
}
