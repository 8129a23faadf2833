package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

func TestEmbeddingURL_SingleVsBatch(t *testing.T) {
	s := New()
	ctx := provider.Context{}

	single := s.EmbeddingURL(types.EmbeddingRequest{Model: "embedding-001", Input: []string{"a"}}, ctx)
	assert.Equal(t, "/v1beta/models/embedding-001:embedContent", single)

	batch := s.EmbeddingURL(types.EmbeddingRequest{Model: "embedding-001", Input: []string{"a", "b"}}, ctx)
	assert.Equal(t, "/v1beta/models/embedding-001:batchEmbedContents", batch)
}

func TestEmbeddingRequestTransformer_Single(t *testing.T) {
	taskType := types.EmbeddingTaskRetrievalQuery
	req := types.EmbeddingRequest{
		Model:    "embedding-001",
		Input:    []string{"hello"},
		TaskType: &taskType,
	}

	body, err := embeddingTransformer{}.TransformEmbeddingRequest(req)
	require.NoError(t, err)

	assert.Equal(t, "models/embedding-001", body["model"])
	assert.Equal(t, "RETRIEVAL_QUERY", body["taskType"])
	content := body["content"].(map[string]any)
	parts := content["parts"].([]map[string]any)
	assert.Equal(t, "hello", parts[0]["text"])
}

func TestEmbeddingRequestTransformer_Batch(t *testing.T) {
	req := types.EmbeddingRequest{
		Model: "embedding-001",
		Input: []string{"a", "b", "c"},
	}

	body, err := embeddingTransformer{}.TransformEmbeddingRequest(req)
	require.NoError(t, err)

	requests := body["requests"].([]map[string]any)
	require.Len(t, requests, 3)
	assert.Equal(t, "models/embedding-001", requests[0]["model"])
}

func TestEmbeddingResponseTransformer_Single(t *testing.T) {
	raw := map[string]any{
		"embedding": map[string]any{
			"values": []any{float64(0.1), float64(0.2), float64(0.3)},
		},
	}

	resp, err := embeddingTransformer{}.TransformEmbeddingResponse(raw)
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 1)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, resp.Embeddings[0])
}

func TestEmbeddingResponseTransformer_Batch(t *testing.T) {
	raw := map[string]any{
		"embeddings": []any{
			map[string]any{"values": []any{float64(0.1)}},
			map[string]any{"values": []any{float64(0.2)}},
		},
	}

	resp, err := embeddingTransformer{}.TransformEmbeddingResponse(raw)
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, []float32{0.1}, resp.Embeddings[0])
	assert.Equal(t, []float32{0.2}, resp.Embeddings[1])
}

func TestTaskTypeToGemini(t *testing.T) {
	tests := []struct {
		in  types.EmbeddingTaskType
		out string
	}{
		{types.EmbeddingTaskRetrievalQuery, "RETRIEVAL_QUERY"},
		{types.EmbeddingTaskRetrievalDocument, "RETRIEVAL_DOCUMENT"},
		{types.EmbeddingTaskSemanticSimilarity, "SEMANTIC_SIMILARITY"},
		{types.EmbeddingTaskClassification, "CLASSIFICATION"},
		{types.EmbeddingTaskClustering, "CLUSTERING"},
		{types.EmbeddingTaskQuestionAnswering, "QUESTION_ANSWERING"},
		{types.EmbeddingTaskFactVerification, "FACT_VERIFICATION"},
		{types.EmbeddingTaskCodeRetrievalQuery, "CODE_RETRIEVAL_QUERY"},
	}

	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			assert.Equal(t, tt.out, taskTypeToGemini(tt.in))
		})
	}
}
