package openaicompat

import "github.com/corvidai/gollm/pkg/types"

// rerankTransformer implements the OpenAI-compatible /rerank contract
// documented in spec.md: usage tokens appear under "usage" for some
// vendors and under a vendor-specific "meta.tokens" envelope for others
// (e.g. Cohere-derived rerank APIs some of these vendors proxy); the
// response transformer checks both and picks whichever is present.
type rerankTransformer struct{}

func (rerankTransformer) TransformRerankRequest(req types.RerankRequest) (map[string]any, error) {
	body := map[string]any{
		"model":            req.Model,
		"query":            req.Query,
		"documents":        req.Documents,
		"return_documents": false,
	}
	if req.TopN != nil {
		body["top_n"] = *req.TopN
	}
	return body, nil
}

func (rerankTransformer) TransformRerankResponse(raw map[string]any) (types.RerankResponse, error) {
	resultsRaw, _ := raw["results"].([]any)
	ranking := make([]types.RerankItem, 0, len(resultsRaw))
	for _, rr := range resultsRaw {
		r, _ := rr.(map[string]any)
		ranking = append(ranking, types.RerankItem{
			Index:          int(int64Field(r, "index")),
			RelevanceScore: floatField(r, "relevance_score"),
		})
	}

	resp := types.RerankResponse{
		Ranking: ranking,
		Model:   stringField(raw, "model"),
	}

	if usage := rerankUsage(raw); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

// rerankUsage checks "usage.*_tokens" first, falling back to vendor
// "meta.tokens.*", per spec.md's documented Open Question resolution:
// accept both shapes and pick the first present.
func rerankUsage(raw map[string]any) *types.Usage {
	if usage, ok := raw["usage"].(map[string]any); ok {
		input := int64Field(usage, "prompt_tokens")
		total := int64Field(usage, "total_tokens")
		if input > 0 || total > 0 {
			return &types.Usage{InputTokens: &input, TotalTokens: &total}
		}
	}

	if meta, ok := raw["meta"].(map[string]any); ok {
		if tokens, ok := meta["tokens"].(map[string]any); ok {
			input := int64Field(tokens, "input_tokens")
			output := int64Field(tokens, "output_tokens")
			total := input + output
			if total > 0 {
				return &types.Usage{InputTokens: &input, OutputTokens: &output, TotalTokens: &total}
			}
		}
	}

	return nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func int64Field(m map[string]any, key string) int64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func floatField(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	f, _ := m[key].(float64)
	return f
}
