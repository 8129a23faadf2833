package httpexec

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
)

// ExecuteStreamJSON POSTs body as JSON and returns the live response body
// for the caller to drive through pkg/streaming. Unlike ExecuteJSON, this
// method does not retry: a partially consumed stream cannot be safely
// replayed, so a stream-establishment failure is returned directly to the
// caller (the initial connect attempt still runs through interceptors).
func (e *Executor) ExecuteStreamJSON(ctx context.Context, providerID, path string, headers http.Header, body map[string]any) (io.ReadCloser, http.Header, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "text/event-stream")

	req, err := e.newRequest(ctx, http.MethodPost, path, headers, bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, err
	}
	if err := e.runInterceptorsPreSend(ctx, req); err != nil {
		return nil, nil, err
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, nil, e.runInterceptorsPostError(ctx, req, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, nil, providererrors.ClassifyHTTPError(providerID, resp.StatusCode, string(data), resp.Header, "")
	}

	if err := e.runInterceptorsPostResponse(ctx, resp); err != nil {
		resp.Body.Close()
		return nil, nil, err
	}

	return resp.Body, resp.Header, nil
}
