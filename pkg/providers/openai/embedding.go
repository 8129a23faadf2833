package openai

import (
	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// embeddingTransformer implements provider.EmbeddingTransformer for
// POST /embeddings, generalizing the teacher's embedding_model.go
// DoEmbed/DoEmbedMany off their fixed []string batching onto the shared
// EmbeddingRequest/EmbeddingResponse canonical shape.
type embeddingTransformer struct{}

func (embeddingTransformer) TransformEmbeddingRequest(req types.EmbeddingRequest) (map[string]any, error) {
	body := map[string]any{
		"model": req.Model,
		"input": req.Input,
	}
	if req.Dimensions != nil {
		body["dimensions"] = *req.Dimensions
	}
	return body, nil
}

func (embeddingTransformer) TransformEmbeddingResponse(raw map[string]any) (types.EmbeddingResponse, error) {
	resp := types.EmbeddingResponse{Model: stringField(raw, "model")}

	data, _ := raw["data"].([]any)
	embeddings := make([][]float32, len(data))
	for _, d := range data {
		entry, _ := d.(map[string]any)
		idx := int(int64Field(entry, "index"))
		values, _ := entry["embedding"].([]any)
		vec := make([]float32, len(values))
		for j, v := range values {
			f, _ := v.(float64)
			vec[j] = float32(f)
		}
		if idx >= 0 && idx < len(embeddings) {
			embeddings[idx] = vec
		}
	}
	resp.Embeddings = embeddings

	if usage, ok := raw["usage"].(map[string]any); ok {
		input := int64Field(usage, "prompt_tokens")
		total := int64Field(usage, "total_tokens")
		resp.Usage = &types.EmbeddingUsage{InputTokens: input, TotalTokens: total}
	}

	return resp, nil
}

func (s *Spec) EmbeddingURL(req types.EmbeddingRequest, ctx provider.Context) string {
	return "/embeddings"
}

func (s *Spec) ChooseEmbeddingTransformers(req types.EmbeddingRequest, ctx provider.Context) provider.EmbeddingTransformer {
	return embeddingTransformer{}
}

// EmbeddingTransformer exposes the POST /embeddings transform pair for
// reuse by openaicompat vendors that serve the same wire format.
func EmbeddingTransformer() provider.EmbeddingTransformer {
	return embeddingTransformer{}
}
