package gemini

import (
	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/types"
)

// ImageURL uses the same :generateContent endpoint as chat, per the original
// source's image_wrapper_uses_generate_content_url contract: Gemini has no
// separate image-generation endpoint, it returns inline_data image parts
// from a generateContent call with responseModalities ["TEXT","IMAGE"].
func (s *Spec) ImageURL(req types.ImageRequest, ctx provider.Context) string {
	return "/v1beta/models/" + req.Model + ":generateContent"
}

func (s *Spec) ChooseImageTransformers(req types.ImageRequest, ctx provider.Context) provider.ImageTransformer {
	return imageTransformer{}
}

type imageTransformer struct{}

func (imageTransformer) TransformImageRequest(req types.ImageRequest) (map[string]any, error) {
	n := req.N
	if n <= 0 {
		n = 1
	}
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]any{{"text": req.Prompt}}},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"TEXT", "IMAGE"},
			"candidateCount":     n,
		},
	}
	return body, nil
}

func (imageTransformer) TransformImageResponse(raw map[string]any) (types.ImageResponse, error) {
	var artifacts []types.ImageArtifact

	candidates, _ := raw["candidates"].([]any)
	for _, cr := range candidates {
		candidate, _ := cr.(map[string]any)
		content, _ := candidate["content"].(map[string]any)
		partsRaw, _ := content["parts"].([]any)
		for _, pr := range partsRaw {
			part, _ := pr.(map[string]any)
			inline, ok := part["inlineData"].(map[string]any)
			if !ok {
				continue
			}
			artifacts = append(artifacts, types.ImageArtifact{
				Base64:    stringField(inline, "data"),
				MediaType: stringField(inline, "mimeType"),
			})
		}
	}

	return types.ImageResponse{
		Images: artifacts,
		Usage:  &types.ImageUsage{ImageCount: len(artifacts)},
	}, nil
}
