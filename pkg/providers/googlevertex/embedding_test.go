package googlevertex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

func TestNormalizeModelID(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"text-embedding-004", "text-embedding-004"},
		{"models/text-embedding-004", "text-embedding-004"},
		{"/projects/p/locations/l/publishers/google/models/text-embedding-004/", "text-embedding-004"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.out, normalizeModelID(tt.in))
		})
	}
}

func TestEmbeddingURL_AppendsKeyQueryParamWithoutAuthHeader(t *testing.T) {
	s := New()
	ctx := provider.Context{BaseURL: "https://example.com/v1", APIKey: provider.NewSecret("abc123")}

	url := s.EmbeddingURL(types.EmbeddingRequest{Model: "text-embedding-004"}, ctx)
	assert.Equal(t, "https://example.com/v1/models/text-embedding-004:predict?key=abc123", url)
}

func TestEmbeddingURL_SkipsKeyWithAuthHeader(t *testing.T) {
	s := New()
	ctx := provider.Context{
		BaseURL:      "https://example.com/v1",
		APIKey:       provider.NewSecret("abc123"),
		ExtraHeaders: map[string]string{"Authorization": "Bearer token"},
	}

	url := s.EmbeddingURL(types.EmbeddingRequest{Model: "text-embedding-004"}, ctx)
	assert.False(t, strings.Contains(url, "key="))
}

func TestEmbeddingRequestTransformer_RejectsTooManyInputs(t *testing.T) {
	input := make([]string, MaxEmbeddingInputs+1)
	for i := range input {
		input[i] = "x"
	}

	_, err := embeddingTransformer{}.TransformEmbeddingRequest(types.EmbeddingRequest{Input: input})
	require.Error(t, err)
}

func TestEmbeddingRequestTransformer_BuildsInstancesAndParameters(t *testing.T) {
	taskType := types.EmbeddingTaskRetrievalDocument
	dims := int64(256)

	req := types.EmbeddingRequest{
		Input:      []string{"hello", "world"},
		TaskType:   &taskType,
		Title:      "my doc",
		Dimensions: &dims,
	}

	body, err := embeddingTransformer{}.TransformEmbeddingRequest(req)
	require.NoError(t, err)

	instances := body["instances"].([]map[string]any)
	require.Len(t, instances, 2)
	assert.Equal(t, "hello", instances[0]["content"])
	assert.Equal(t, "RETRIEVAL_DOCUMENT", instances[0]["task_type"])
	assert.Equal(t, "my doc", instances[0]["title"])

	params := body["parameters"].(map[string]any)
	assert.Equal(t, int64(256), params["outputDimensionality"])
}

func TestEmbeddingResponseTransformer_ParsesPredictions(t *testing.T) {
	raw := map[string]any{
		"predictions": []any{
			map[string]any{
				"embeddings": map[string]any{
					"values":     []any{float64(0.1), float64(0.2)},
					"statistics": map[string]any{"token_count": float64(5)},
				},
			},
		},
	}

	resp, err := embeddingTransformer{model: "text-embedding-004"}.TransformEmbeddingResponse(raw)
	require.NoError(t, err)

	require.Len(t, resp.Embeddings, 1)
	assert.Equal(t, []float32{0.1, 0.2}, resp.Embeddings[0])
	assert.Equal(t, "text-embedding-004", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(5), resp.Usage.InputTokens)
}

func TestEmbeddingResponseTransformer_MissingPredictionsIsError(t *testing.T) {
	_, err := embeddingTransformer{}.TransformEmbeddingResponse(map[string]any{})
	require.Error(t, err)
}

func TestEmbeddingResponseTransformer_DefaultsModelName(t *testing.T) {
	raw := map[string]any{"predictions": []any{}}
	resp, err := embeddingTransformer{}.TransformEmbeddingResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "vertex-embedding", resp.Model)
}

func TestTaskTypeToVertex_Unspecified(t *testing.T) {
	assert.Equal(t, "UNSPECIFIED", taskTypeToVertex(types.EmbeddingTaskUnspecified))
}
