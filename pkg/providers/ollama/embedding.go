package ollama

import "github.com/corvidai/gollm/pkg/types"

// embeddingTransformer speaks Ollama's native /api/embed, which accepts a
// string or array of strings as "input" and returns an "embeddings" array
// in the same order, unlike the teacher's OpenAI-compatible /v1/embeddings
// proxy.
type embeddingTransformer struct{}

func (embeddingTransformer) TransformEmbeddingRequest(req types.EmbeddingRequest) (map[string]any, error) {
	return map[string]any{
		"model": req.Model,
		"input": req.Input,
	}, nil
}

func (embeddingTransformer) TransformEmbeddingResponse(raw map[string]any) (types.EmbeddingResponse, error) {
	embeddingsRaw, _ := raw["embeddings"].([]any)
	embeddings := make([][]float32, len(embeddingsRaw))
	for i, er := range embeddingsRaw {
		vecRaw, _ := er.([]any)
		vec := make([]float32, len(vecRaw))
		for j, v := range vecRaw {
			if f, ok := v.(float64); ok {
				vec[j] = float32(f)
			}
		}
		embeddings[i] = vec
	}

	resp := types.EmbeddingResponse{
		Embeddings: embeddings,
		Model:      stringField(raw, "model"),
	}

	if promptCount := int64Field(raw, "prompt_eval_count"); promptCount > 0 {
		resp.Usage = &types.EmbeddingUsage{InputTokens: promptCount, TotalTokens: promptCount}
	}

	return resp, nil
}
