// Package googlevertex implements provider.Spec for Vertex AI's text
// embedding endpoint. Vertex AI's chat surface is Gemini itself (served
// through the gemini package's request shape under a different host/auth);
// this package only covers the :predict embedding standard, which Vertex
// exposes independently of the Gemini API and which the teacher's Google
// provider never touched at all.
package googlevertex

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/corvidai/gollm/pkg/provider"
	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/types"
)

// MaxEmbeddingInputs is Vertex's documented per-call instance cap, ported
// verbatim from vertex_embedding.rs.
const MaxEmbeddingInputs = 2048

// Spec implements provider.Spec for Vertex AI text embeddings.
type Spec struct {
	provider.UnsupportedSpec
}

func New() *Spec {
	return &Spec{UnsupportedSpec: provider.UnsupportedSpec{ProviderName: "google-vertex"}}
}

func (s *Spec) ID() string { return "google-vertex" }

func (s *Spec) Capabilities() provider.Capability {
	return provider.CapabilityEmbedding
}

func (s *Spec) BuildHeaders(ctx provider.Context) (http.Header, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	for k, v := range ctx.ExtraHeaders {
		h.Set(k, v)
	}
	return h, nil
}

// EmbeddingURL builds the publisher-model :predict path, appending the API
// key as a query parameter when no Authorization header is already set,
// ported from embedding_url's append_api_key_query/has_auth_header pair.
func (s *Spec) EmbeddingURL(req types.EmbeddingRequest, ctx provider.Context) string {
	base := strings.TrimRight(ctx.BaseURL, "/")
	model := normalizeModelID(req.Model)
	url := fmt.Sprintf("%s/models/%s:predict", base, model)

	if !ctx.HasAuthorizationHeader() && ctx.APIKey != nil && !ctx.APIKey.Empty() {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "key=" + ctx.APIKey.Reveal()
	}
	return url
}

func (s *Spec) ChooseEmbeddingTransformers(req types.EmbeddingRequest, ctx provider.Context) provider.EmbeddingTransformer {
	return embeddingTransformer{model: req.Model}
}

// normalizeModelID strips a leading/trailing slash and any
// "publishers/.../models/" or "models/" prefix, ported from
// normalize_vertex_model_id.
func normalizeModelID(model string) string {
	trimmed := strings.Trim(strings.TrimSpace(model), "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/models/"); idx >= 0 {
		return trimmed[idx+len("/models/"):]
	}
	return strings.TrimPrefix(trimmed, "models/")
}

type embeddingTransformer struct {
	model string
}

func (embeddingTransformer) TransformEmbeddingRequest(req types.EmbeddingRequest) (map[string]any, error) {
	if len(req.Input) > MaxEmbeddingInputs {
		return nil, providererrors.NewValidationError("input",
			fmt.Sprintf("too many embedding values for a single call: %d (max %d)",
				len(req.Input), MaxEmbeddingInputs), nil)
	}

	taskType := ""
	if req.TaskType != nil {
		taskType = taskTypeToVertex(*req.TaskType)
	}

	instances := make([]map[string]any, len(req.Input))
	for i, content := range req.Input {
		inst := map[string]any{"content": content}
		if taskType != "" {
			inst["task_type"] = taskType
		}
		if req.Title != "" {
			inst["title"] = req.Title
		}
		instances[i] = inst
	}

	params := map[string]any{}
	if req.Dimensions != nil {
		params["outputDimensionality"] = *req.Dimensions
	}

	return map[string]any{
		"instances":  instances,
		"parameters": params,
	}, nil
}

func (t embeddingTransformer) TransformEmbeddingResponse(raw map[string]any) (types.EmbeddingResponse, error) {
	predictions, _ := raw["predictions"].([]any)
	if predictions == nil {
		return types.EmbeddingResponse{}, providererrors.NewProviderError(
			"google-vertex", 0, "parse_error", "vertex embedding response missing predictions", nil)
	}

	embeddings := make([][]float32, 0, len(predictions))
	var tokenCount int64

	for _, pr := range predictions {
		pred, _ := pr.(map[string]any)
		embeddingObj, _ := pred["embeddings"].(map[string]any)
		valuesRaw, _ := embeddingObj["values"].([]any)

		vec := make([]float32, len(valuesRaw))
		for i, v := range valuesRaw {
			if f, ok := v.(float64); ok {
				vec[i] = float32(f)
			}
		}
		embeddings = append(embeddings, vec)

		if stats, ok := embeddingObj["statistics"].(map[string]any); ok {
			if tc, ok := stats["token_count"].(float64); ok {
				tokenCount += int64(tc)
			}
		}
	}

	model := t.model
	if model == "" {
		model = "vertex-embedding"
	}

	resp := types.EmbeddingResponse{Embeddings: embeddings, Model: model}
	if tokenCount > 0 {
		resp.Usage = &types.EmbeddingUsage{InputTokens: tokenCount, TotalTokens: tokenCount}
	}
	return resp, nil
}

func taskTypeToVertex(t types.EmbeddingTaskType) string {
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
	case types.EmbeddingTaskUnspecified:
		return "UNSPECIFIED"
	default:
		return ""
	}
}
