package minimaxi

import (
	"strconv"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/types"
)

// SupportedPurposes is MiniMaxi's documented restricted upload-purpose set,
// ported from validate_upload_request's `supported` array.
var SupportedPurposes = []types.FilePurpose{
	types.FilePurposeVoiceClone,
	types.FilePurposePromptAudio,
	types.FilePurposeT2AAsyncInput,
}

// IsSupportedPurpose reports whether p is one of MiniMaxi's accepted upload
// purposes.
func IsSupportedPurpose(p types.FilePurpose) bool {
	for _, sp := range SupportedPurposes {
		if sp == p {
			return true
		}
	}
	return false
}

// filesTransformer unwraps MiniMaxi's base_resp{status_code,status_msg}
// envelope and its nested "file" object, per check_base_resp/map_file_object
// in files.rs.
type filesTransformer struct{}

func (filesTransformer) TransformFileObject(raw map[string]any) (types.FileObject, error) {
	if err := checkBaseResp(raw); err != nil {
		return types.FileObject{}, err
	}

	file := raw
	if nested, ok := raw["file"].(map[string]any); ok {
		file = nested
	}

	return types.FileObject{
		ID:        stringOrNumberField(file, "file_id"),
		Name:      stringField(file, "filename"),
		Bytes:     int64Field(file, "bytes"),
		Purpose:   types.FilePurpose(stringField(file, "purpose")),
		CreatedAt: int64Field(file, "created_at"),
		// MiniMaxi exposes no file status field; the original source keeps
		// a stable placeholder here too.
		Status: "available",
	}, nil
}

func checkBaseResp(raw map[string]any) error {
	base, ok := raw["base_resp"].(map[string]any)
	if !ok {
		return providererrors.NewProviderError("minimaxi", 0, "parse_error",
			"missing 'base_resp' in response", nil)
	}

	statusCode := int64Field(base, "status_code")
	if statusCode != 0 {
		statusMsg := stringField(base, "status_msg")
		if statusMsg == "" {
			statusMsg = "unknown error"
		}
		return providererrors.NewProviderError("minimaxi", 0,
			strconv.FormatInt(statusCode, 10), statusMsg, nil)
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

func stringOrNumberField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	if f, ok := m[key].(float64); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	return ""
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
