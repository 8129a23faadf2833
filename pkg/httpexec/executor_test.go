package httpexec

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"github.com/corvidai/gollm/pkg/retry"
)

func noRetryExecutor(baseURL string) *Executor {
	e := New(baseURL, http.DefaultClient)
	e.RetryOptions = retry.Options{MaxRetries: 0, ShouldRetry: func(error) bool { return false }}
	return e
}

func TestExecuteJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"model":"gpt"}`, string(body))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"resp-1"}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	resp, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", nil, map[string]any{"model": "gpt"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	decoded, err := DecodeJSON(resp)
	require.NoError(t, err)
	assert.Equal(t, "resp-1", decoded["id"])
}

func TestExecuteJSON_ClassifiesHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no such model"}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	_, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", nil, map[string]any{})

	var notFound *providererrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExecuteGet_SendsQueryParameters(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	_, err := e.ExecuteGet(context.Background(), "openai", "/v1/models", nil, url.Values{"limit": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, "10", gotQuery.Get("limit"))
}

func TestExecuteDelete_UsesDeleteMethod(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	_, err := e.ExecuteDelete(context.Background(), "openai", "/v1/files/abc", nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestExecuteMultipart_SendsFileAndFields(t *testing.T) {
	var gotFilename, gotPurpose string
	var gotContent []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPurpose = r.FormValue("purpose")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotContent, _ = io.ReadAll(file)
		w.Write([]byte(`{"id":"file-1"}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	factory := NewMultipartFields("file", "data.txt", []byte("hello"), map[string]string{"purpose": "assistants"})
	resp, err := e.ExecuteMultipart(context.Background(), "openai", "/v1/files", nil, factory)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "data.txt", gotFilename)
	assert.Equal(t, "assistants", gotPurpose)
	assert.Equal(t, "hello", string(gotContent))
}

func TestDo_RetriesOn500ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	e := New(srv.URL, http.DefaultClient)
	e.RetryOptions = retry.Options{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2,
		ShouldRetry:  providererrors.IsRetryable,
	}

	resp, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", nil, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestDo_DoesNotRetryNonRetryableStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	e := New(srv.URL, http.DefaultClient)
	e.RetryOptions = retry.Options{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		ShouldRetry:  providererrors.IsRetryable,
	}

	_, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", nil, map[string]any{})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RebuildsAuthOn401ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	e.RebuildAuth = func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer fresh-token")
		return nil
	}

	resp, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", http.Header{"Authorization": {"Bearer stale-token"}}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, attempts)
}

func TestDo_RebuildAuthFailureFallsBackToClassifiedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	e := noRetryExecutor(srv.URL)
	e.RebuildAuth = func(_ context.Context, _ *http.Request) error {
		return errors.New("refresh failed")
	}

	_, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", nil, map[string]any{})
	require.Error(t, err)
	var provErr *providererrors.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
}

type recordingInterceptor struct {
	preSendCalled       bool
	postResponseCalled  bool
	injectedHeaderValue string
}

func (r *recordingInterceptor) PreSend(_ context.Context, req *http.Request) error {
	r.preSendCalled = true
	req.Header.Set("X-Injected", r.injectedHeaderValue)
	return nil
}

func (r *recordingInterceptor) PostResponse(_ context.Context, _ *http.Response) error {
	r.postResponseCalled = true
	return nil
}

func (r *recordingInterceptor) PostError(_ context.Context, _ *http.Request, err error) error {
	return err
}

func TestExecuteJSON_RunsInterceptors(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Injected")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ic := &recordingInterceptor{injectedHeaderValue: "from-interceptor"}
	e := noRetryExecutor(srv.URL)
	e.Interceptors = []Interceptor{ic}

	_, err := e.ExecuteJSON(context.Background(), "openai", "/v1/chat", nil, map[string]any{})
	require.NoError(t, err)
	assert.True(t, ic.preSendCalled)
	assert.True(t, ic.postResponseCalled)
	assert.Equal(t, "from-interceptor", gotHeader)
}

func TestNewRequest_SetsRequestIDWhenAbsent(t *testing.T) {
	e := New("http://example.com", http.DefaultClient)
	req, err := e.newRequest(context.Background(), http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, req.Header.Get("x-request-id"))
}

func TestNewRequest_PreservesExistingRequestID(t *testing.T) {
	e := New("http://example.com", http.DefaultClient)
	headers := http.Header{"x-request-id": {"caller-supplied"}}
	req, err := e.newRequest(context.Background(), http.MethodGet, "/x", headers, nil)
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied", req.Header.Get("x-request-id"))
}

func TestDecodeJSONInto_UnmarshalsArbitraryTarget(t *testing.T) {
	type listResp struct {
		Data []string `json:"data"`
	}
	resp := &RawResponse{Body: []byte(`{"data":["a","b"]}`)}

	var out listResp
	require.NoError(t, DecodeJSONInto(resp, &out))
	assert.Equal(t, []string{"a", "b"}, out.Data)
}

func TestDecodeJSON_InvalidBodyReturnsError(t *testing.T) {
	resp := &RawResponse{Body: []byte(`not json`)}
	_, err := DecodeJSON(resp)
	assert.Error(t, err)
}
