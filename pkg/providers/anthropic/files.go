package anthropic

import (
	"time"

	"github.com/corvidai/gollm/pkg/types"
)

// filesTransformer adapts Anthropic's Files API object shape
// (https://docs.anthropic.com/en/docs/build-with-claude/files), which has no
// purpose field, to the canonical FileObject.
type filesTransformer struct{}

func (filesTransformer) TransformFileObject(raw map[string]any) (types.FileObject, error) {
	return types.FileObject{
		ID:        stringField(raw, "id"),
		Name:      stringField(raw, "filename"),
		Bytes:     int64Field(raw, "size_bytes"),
		CreatedAt: parseCreatedAt(raw),
		Status:    downloadableStatus(raw),
	}, nil
}

func downloadableStatus(raw map[string]any) string {
	if v, ok := raw["downloadable"].(bool); ok && v {
		return "downloadable"
	}
	return "processed"
}

// parseCreatedAt lifts created_at, which Anthropic sends as an RFC3339
// string rather than a unix timestamp, into the canonical int64 field.
func parseCreatedAt(raw map[string]any) int64 {
	s := stringField(raw, "created_at")
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
