package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidai/gollm/pkg/types"
)

func TestEmbeddingRequestTransformer_AcceptsArrayInput(t *testing.T) {
	req := types.EmbeddingRequest{Model: "nomic-embed-text", Input: []string{"a", "b"}}

	body, err := embeddingTransformer{}.TransformEmbeddingRequest(req)
	require.NoError(t, err)

	assert.Equal(t, "nomic-embed-text", body["model"])
	assert.Equal(t, []string{"a", "b"}, body["input"])
}

func TestEmbeddingResponseTransformer_ParsesEmbeddingsAndUsage(t *testing.T) {
	raw := map[string]any{
		"model": "nomic-embed-text",
		"embeddings": []any{
			[]any{float64(0.1), float64(0.2)},
			[]any{float64(0.3), float64(0.4)},
		},
		"prompt_eval_count": float64(7),
	}

	resp, err := embeddingTransformer{}.TransformEmbeddingResponse(raw)
	require.NoError(t, err)

	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, resp.Embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, resp.Embeddings[1])
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(7), resp.Usage.InputTokens)
}

func TestEmbeddingResponseTransformer_NoUsageWhenAbsent(t *testing.T) {
	raw := map[string]any{
		"embeddings": []any{[]any{float64(0.1)}},
	}

	resp, err := embeddingTransformer{}.TransformEmbeddingResponse(raw)
	require.NoError(t, err)
	assert.Nil(t, resp.Usage)
}
