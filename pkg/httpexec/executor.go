// Package httpexec is the shared HTTP execution layer every provider
// transport runs through: request construction, an ordered interceptor
// chain, multipart uploads, and a one-shot 401 rebuild-and-retry that sits
// outside the caller's normal retry budget. Grounded on the teacher's
// internal/http.Client, generalized with the interceptor/retry/multipart
// machinery that client lacked.
package httpexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/retry"
)

// Interceptor observes or mutates a request before it is sent and a response
// after it returns. PreSend hooks fire in registration order; PostResponse
// and PostError hooks fire in reverse registration order, mirroring the
// middleware pipeline's pre/post convention.
type Interceptor interface {
	PreSend(ctx context.Context, req *http.Request) error
	PostResponse(ctx context.Context, resp *http.Response) error
	PostError(ctx context.Context, req *http.Request, err error) error
}

// RebuildAuth rebuilds request authentication, e.g. after a token refresh.
// It is invoked at most once per logical call, on a 401, outside the normal
// retry budget.
type RebuildAuth func(ctx context.Context, req *http.Request) error

// Executor is the shared HTTP client every provider Spec is paired with.
type Executor struct {
	Client       *http.Client
	BaseURL      string
	Interceptors []Interceptor
	RetryOptions retry.Options
	RebuildAuth  RebuildAuth
}

// New builds an Executor with the given base URL and default retry policy.
func New(baseURL string, client *http.Client) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{
		Client:       client,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		RetryOptions: retry.DefaultOptions(),
	}
}

func (e *Executor) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	base, err := url.Parse(e.BaseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func (e *Executor) newRequest(ctx context.Context, method, path string, headers http.Header, body io.Reader) (*http.Request, error) {
	full, err := e.resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("x-request-id") == "" {
		req.Header.Set("x-request-id", uuid.NewString())
	}
	return req, nil
}

func (e *Executor) runInterceptorsPreSend(ctx context.Context, req *http.Request) error {
	for _, ic := range e.Interceptors {
		if err := ic.PreSend(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runInterceptorsPostResponse(ctx context.Context, resp *http.Response) error {
	for i := len(e.Interceptors) - 1; i >= 0; i-- {
		if err := e.Interceptors[i].PostResponse(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runInterceptorsPostError(ctx context.Context, req *http.Request, err error) error {
	for i := len(e.Interceptors) - 1; i >= 0; i-- {
		if herr := e.Interceptors[i].PostError(ctx, req, err); herr != nil {
			err = herr
		}
	}
	return err
}

// RawResponse is the outcome of one non-streaming HTTP exchange.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (e *Executor) do(ctx context.Context, providerID string, req *http.Request, bodyBytes []byte) (*RawResponse, error) {
	if bodyBytes != nil {
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		req.ContentLength = int64(len(bodyBytes))
	}
	if err := e.runInterceptorsPreSend(ctx, req); err != nil {
		return nil, err
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, e.runInterceptorsPostError(ctx, req, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.runInterceptorsPostError(ctx, req, err)
	}

	if err := e.runInterceptorsPostResponse(ctx, resp); err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		classified := providererrors.ClassifyHTTPError(providerID, resp.StatusCode, string(data), resp.Header, "")

		if resp.StatusCode == 401 && e.RebuildAuth != nil {
			rebuilt := req.Clone(ctx)
			if authErr := e.RebuildAuth(ctx, rebuilt); authErr == nil {
				if bodyBytes != nil {
					rebuilt.Body = io.NopCloser(bytes.NewReader(bodyBytes))
					rebuilt.ContentLength = int64(len(bodyBytes))
				}
				if retryResp, retryErr := e.Client.Do(rebuilt); retryErr == nil {
					defer retryResp.Body.Close()
					retryData, readErr := io.ReadAll(retryResp.Body)
					if readErr == nil {
						if retryResp.StatusCode < 400 {
							return &RawResponse{StatusCode: retryResp.StatusCode, Headers: retryResp.Header, Body: retryData}, nil
						}
						classified = providererrors.ClassifyHTTPError(providerID, retryResp.StatusCode, string(retryData), retryResp.Header, "")
					}
				}
			}
		}

		return &RawResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}, classified
	}

	return &RawResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}

// ExecuteJSON POSTs body as JSON to path and retries per e.RetryOptions,
// returning the raw response once a non-retryable outcome is reached.
func (e *Executor) ExecuteJSON(ctx context.Context, providerID, path string, headers http.Header, body map[string]any) (*RawResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Content-Type", "application/json")

	var result *RawResponse
	err = retry.Do(ctx, e.RetryOptions, func(ctx context.Context) error {
		req, err := e.newRequest(ctx, http.MethodPost, path, headers, bytes.NewReader(encoded))
		if err != nil {
			return err
		}
		resp, err := e.do(ctx, providerID, req, encoded)
		result = resp
		return err
	})
	return result, err
}

// ExecuteGet issues a GET request with optional query parameters.
func (e *Executor) ExecuteGet(ctx context.Context, providerID, path string, headers http.Header, query url.Values) (*RawResponse, error) {
	full := path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	var result *RawResponse
	err := retry.Do(ctx, e.RetryOptions, func(ctx context.Context) error {
		req, err := e.newRequest(ctx, http.MethodGet, full, headers, nil)
		if err != nil {
			return err
		}
		resp, err := e.do(ctx, providerID, req, nil)
		result = resp
		return err
	})
	return result, err
}

// ExecuteDelete issues a DELETE request.
func (e *Executor) ExecuteDelete(ctx context.Context, providerID, path string, headers http.Header) (*RawResponse, error) {
	var result *RawResponse
	err := retry.Do(ctx, e.RetryOptions, func(ctx context.Context) error {
		req, err := e.newRequest(ctx, http.MethodDelete, path, headers, nil)
		if err != nil {
			return err
		}
		resp, err := e.do(ctx, providerID, req, nil)
		result = resp
		return err
	})
	return result, err
}

// ExecuteGetBinary issues a GET request and returns the raw body without
// attempting JSON parsing, for binary downloads such as file content.
func (e *Executor) ExecuteGetBinary(ctx context.Context, providerID, path string, headers http.Header) (*RawResponse, error) {
	return e.ExecuteGet(ctx, providerID, path, headers, nil)
}

// MultipartFactory rebuilds a multipart request body from scratch on every
// attempt, since multipart.Writer output cannot be replayed from a buffer
// position once partially read by a failed attempt.
type MultipartFactory func() (contentType string, body io.Reader, err error)

// ExecuteMultipart POSTs a multipart/form-data body built by factory.
func (e *Executor) ExecuteMultipart(ctx context.Context, providerID, path string, headers http.Header, factory MultipartFactory) (*RawResponse, error) {
	var result *RawResponse
	err := retry.Do(ctx, e.RetryOptions, func(ctx context.Context) error {
		contentType, body, err := factory()
		if err != nil {
			return err
		}
		buf, err := io.ReadAll(body)
		if err != nil {
			return err
		}

		h := headers.Clone()
		if h == nil {
			h = http.Header{}
		}
		h.Set("Content-Type", contentType)

		req, err := e.newRequest(ctx, http.MethodPost, path, h, bytes.NewReader(buf))
		if err != nil {
			return err
		}
		resp, err := e.do(ctx, providerID, req, buf)
		result = resp
		return err
	})
	return result, err
}

// NewMultipartFields is a convenience MultipartFactory builder for simple
// file-upload requests: one file field plus a set of string fields.
func NewMultipartFields(fileField, filename string, fileContent []byte, fields map[string]string) MultipartFactory {
	return func() (string, io.Reader, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return "", nil, err
			}
		}
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return "", nil, err
		}
		if _, err := part.Write(fileContent); err != nil {
			return "", nil, err
		}
		if err := w.Close(); err != nil {
			return "", nil, err
		}
		return w.FormDataContentType(), &buf, nil
	}
}

// DecodeJSON unmarshals a RawResponse body into a map, used by transformers
// that work with map[string]any rather than fixed structs.
func DecodeJSON(resp *RawResponse) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// DecodeJSONInto unmarshals a RawResponse body into an arbitrary target,
// for response shapes (e.g. a file listing envelope) that are not a plain
// map[string]any.
func DecodeJSONInto(resp *RawResponse, target any) error {
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
