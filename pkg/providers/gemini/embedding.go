package gemini

import (
	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// EmbeddingURL selects embedContent for a single input and batchEmbedContents
// for multiple, fixing the teacher's DoEmbedMany, which looped DoEmbed
// (one HTTP call per input) instead of using Gemini's native batch endpoint.
func (s *Spec) EmbeddingURL(req types.EmbeddingRequest, ctx provider.Context) string {
	if len(req.Input) > 1 {
		return "/v1beta/models/" + req.Model + ":batchEmbedContents"
	}
	return "/v1beta/models/" + req.Model + ":embedContent"
}

func (s *Spec) ChooseEmbeddingTransformers(req types.EmbeddingRequest, ctx provider.Context) provider.EmbeddingTransformer {
	return embeddingTransformer{}
}

type embeddingTransformer struct{}

func (embeddingTransformer) TransformEmbeddingRequest(req types.EmbeddingRequest) (map[string]any, error) {
	taskType := ""
	if req.TaskType != nil {
		taskType = taskTypeToGemini(*req.TaskType)
	}

	if len(req.Input) <= 1 {
		content := map[string]any{
			"parts": []map[string]any{{"text": firstInput(req.Input)}},
		}
		body := map[string]any{
			"model":   "models/" + req.Model,
			"content": content,
		}
		if taskType != "" {
			body["taskType"] = taskType
		}
		if req.Title != "" {
			body["title"] = req.Title
		}
		if req.Dimensions != nil {
			body["outputDimensionality"] = *req.Dimensions
		}
		return body, nil
	}

	requests := make([]map[string]any, len(req.Input))
	for i, text := range req.Input {
		r := map[string]any{
			"model":   "models/" + req.Model,
			"content": map[string]any{"parts": []map[string]any{{"text": text}}},
		}
		if taskType != "" {
			r["taskType"] = taskType
		}
		if req.Dimensions != nil {
			r["outputDimensionality"] = *req.Dimensions
		}
		requests[i] = r
	}
	return map[string]any{"requests": requests}, nil
}

func (embeddingTransformer) TransformEmbeddingResponse(raw map[string]any) (types.EmbeddingResponse, error) {
	if single, ok := raw["embedding"].(map[string]any); ok {
		return types.EmbeddingResponse{Embeddings: [][]float32{valuesField(single)}}, nil
	}

	embeddingsRaw, _ := raw["embeddings"].([]any)
	out := make([][]float32, len(embeddingsRaw))
	for i, er := range embeddingsRaw {
		e, _ := er.(map[string]any)
		out[i] = valuesField(e)
	}
	return types.EmbeddingResponse{Embeddings: out}, nil
}

func valuesField(m map[string]any) []float32 {
	if m == nil {
		return nil
	}
	raw, _ := m["values"].([]any)
	out := make([]float32, len(raw))
	for i, v := range raw {
		if f, ok := v.(float64); ok {
			out[i] = float32(f)
		}
	}
	return out
}

func firstInput(input []string) string {
	if len(input) == 0 {
		return ""
	}
	return input[0]
}

func taskTypeToGemini(t types.EmbeddingTaskType) string {
	switch t {
	case types.EmbeddingTaskRetrievalQuery:
		return "RETRIEVAL_QUERY"
	case types.EmbeddingTaskRetrievalDocument:
		return "RETRIEVAL_DOCUMENT"
	case types.EmbeddingTaskSemanticSimilarity:
		return "SEMANTIC_SIMILARITY"
	case types.EmbeddingTaskClassification:
		return "CLASSIFICATION"
	case types.EmbeddingTaskClustering:
		return "CLUSTERING"
	case types.EmbeddingTaskQuestionAnswering:
		return "QUESTION_ANSWERING"
	case types.EmbeddingTaskFactVerification:
		return "FACT_VERIFICATION"
	case types.EmbeddingTaskCodeRetrievalQuery:
		return "CODE_RETRIEVAL_QUERY"
	default:
		return ""
	}
}
