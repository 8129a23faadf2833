package gemini

import (
	"strconv"
	"time"

	"github.com/corvidai/gollm/pkg/types"
)

// filesTransformer normalizes the Files API's file resource
// ("files/abc-123", sizeBytes as a string, RFC3339 createTime/state) into the
// canonical FileObject.
type filesTransformer struct{}

func (filesTransformer) TransformFileObject(raw map[string]any) (types.FileObject, error) {
	return types.FileObject{
		ID:        stringField(raw, "name"),
		Name:      stringField(raw, "displayName"),
		Bytes:     parseSizeBytes(raw),
		CreatedAt: parseCreateTime(raw),
		Status:    stringField(raw, "state"),
	}, nil
}

func parseSizeBytes(raw map[string]any) int64 {
	switch v := raw["sizeBytes"].(type) {
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func parseCreateTime(raw map[string]any) int64 {
	s := stringField(raw, "createTime")
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
