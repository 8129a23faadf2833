package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidai/gollm/pkg/httpexec"
	"github.com/corvidai/gollm/pkg/middleware"
	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// fakeSpec is a minimal provider.Spec for exercising pkg/client's call
// sequencing without a real vendor package.
type fakeSpec struct {
	provider.UnsupportedSpec
	baseURL      string
	capabilities provider.Capability

	embeddingTransformer provider.EmbeddingTransformer
	rerankTransformer    provider.RerankTransformer
	filesTransformer     provider.FilesTransformer
}

func (s *fakeSpec) ID() string                     { return "fake" }
func (s *fakeSpec) Capabilities() provider.Capability { return s.capabilities }

func (s *fakeSpec) BuildHeaders(provider.Context) (http.Header, error) {
	return http.Header{"X-Fake": {"1"}}, nil
}

func (s *fakeSpec) ChatURL(types.ChatRequest, provider.Context) string { return s.baseURL + "/chat" }

func (s *fakeSpec) ChooseChatTransformers(types.ChatRequest, provider.Context) provider.ChatTransformers {
	return provider.ChatTransformers{
		Request:    fakeRequestTransformer{},
		Response:   fakeResponseTransformer{},
		Converter:  fakeStreamConverter{},
		StreamMode: streaming.ModeSSE,
	}
}

func (s *fakeSpec) EmbeddingURL(types.EmbeddingRequest, provider.Context) string {
	return s.baseURL + "/embed"
}
func (s *fakeSpec) ChooseEmbeddingTransformers(types.EmbeddingRequest, provider.Context) provider.EmbeddingTransformer {
	return s.embeddingTransformer
}

func (s *fakeSpec) RerankURL(types.RerankRequest, provider.Context) string { return s.baseURL + "/rerank" }
func (s *fakeSpec) ChooseRerankTransformers(types.RerankRequest, provider.Context) provider.RerankTransformer {
	return s.rerankTransformer
}

func (s *fakeSpec) FilesBaseURL(provider.Context) string { return s.baseURL + "/files" }
func (s *fakeSpec) ChooseFilesTransformers(provider.Context) provider.FilesTransformer {
	return s.filesTransformer
}

type fakeRequestTransformer struct{}

func (fakeRequestTransformer) TransformChat(req types.ChatRequest) (map[string]any, error) {
	return map[string]any{"messages": len(req.Messages)}, nil
}

type fakeResponseTransformer struct{}

func (fakeResponseTransformer) TransformChatResponse(raw map[string]any) (types.ChatResponse, error) {
	id, _ := raw["id"].(string)
	return types.ChatResponse{ID: id}, nil
}

type fakeStreamConverter struct{}

func (fakeStreamConverter) Convert(raw streaming.RawFrame) ([]types.ChatStreamEvent, error) {
	if raw.Event == nil {
		return nil, nil
	}
	return []types.ChatStreamEvent{types.ContentDelta{Text: raw.Event.Data}}, nil
}

func (fakeStreamConverter) Finish() ([]types.ChatStreamEvent, error) { return nil, nil }

type fakeEmbeddingTransformer struct{}

func (fakeEmbeddingTransformer) TransformEmbeddingRequest(req types.EmbeddingRequest) (map[string]any, error) {
	return map[string]any{"input": req.Input}, nil
}
func (fakeEmbeddingTransformer) TransformEmbeddingResponse(raw map[string]any) (types.EmbeddingResponse, error) {
	return types.EmbeddingResponse{Model: raw["model"].(string)}, nil
}

func newFakeClient(t *testing.T, srvURL string, caps provider.Capability) *Client {
	t.Helper()
	spec := &fakeSpec{baseURL: srvURL, capabilities: caps, embeddingTransformer: fakeEmbeddingTransformer{}}
	exec := httpexec.New(srvURL, http.DefaultClient)
	exec.RetryOptions.MaxRetries = 0
	exec.RetryOptions.ShouldRetry = func(error) bool { return false }
	return New(spec, provider.Context{}, exec, middleware.NewPipeline())
}

func TestClient_Generate_RoundTripsThroughTransformers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("X-Fake"))
		w.Write([]byte(`{"id":"resp-1"}`))
	}))
	defer srv.Close()

	c := newFakeClient(t, srv.URL, provider.CapabilityChat)
	resp, err := c.Generate(context.Background(), types.ChatRequest{
		Messages: []types.ChatMessage{{Role: types.RoleUser}},
	})
	require.NoError(t, err)
	assert.Equal(t, "resp-1", resp.ID)
}

func TestClient_Generate_PreGenerateShortCircuitsSkipsHTTP(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"id":"should-not-reach"}`))
	}))
	defer srv.Close()

	want := &types.ChatResponse{ID: "cached"}
	pipeline := middleware.NewPipeline(middleware.Middleware{
		PreGenerate: func(context.Context, types.ChatRequest) (*types.ChatResponse, error) { return want, nil },
	})

	spec := &fakeSpec{baseURL: srv.URL, capabilities: provider.CapabilityChat}
	exec := httpexec.New(srv.URL, http.DefaultClient)
	c := New(spec, provider.Context{}, exec, pipeline)

	resp, err := c.Generate(context.Background(), types.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cached", resp.ID)
	assert.False(t, called, "HTTP call should have been skipped")
}

func TestClient_Generate_PostGenerateAnnotatesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"base"}`))
	}))
	defer srv.Close()

	pipeline := middleware.NewPipeline(middleware.Middleware{
		PostGenerate: func(_ context.Context, _ types.ChatRequest, resp types.ChatResponse) (types.ChatResponse, error) {
			resp.ID += "-annotated"
			return resp, nil
		},
	})

	spec := &fakeSpec{baseURL: srv.URL, capabilities: provider.CapabilityChat}
	exec := httpexec.New(srv.URL, http.DefaultClient)
	c := New(spec, provider.Context{}, exec, pipeline)

	resp, err := c.Generate(context.Background(), types.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "base-annotated", resp.ID)
}

func TestClient_Stream_EmitsEventsThroughPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: hello\n\ndata: world\n\n"))
	}))
	defer srv.Close()

	c := newFakeClient(t, srv.URL, provider.CapabilityChat)
	handle, err := c.Stream(context.Background(), types.ChatRequest{})
	require.NoError(t, err)

	var texts []string
	for ev := range handle.Events() {
		if delta, ok := ev.(types.ContentDelta); ok {
			texts = append(texts, delta.Text)
		}
	}
	assert.NoError(t, handle.Err())
	assert.Contains(t, texts, "hello")
	assert.Contains(t, texts, "world")
}

func TestClient_Stream_PreStreamShortCircuitReplaysEvents(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	want := []types.ChatStreamEvent{types.ContentDelta{Text: "cached-event"}}
	pipeline := middleware.NewPipeline(middleware.Middleware{
		PreStream: func(context.Context, types.ChatRequest) ([]types.ChatStreamEvent, error) { return want, nil },
	})

	spec := &fakeSpec{baseURL: srv.URL, capabilities: provider.CapabilityChat}
	exec := httpexec.New(srv.URL, http.DefaultClient)
	c := New(spec, provider.Context{}, exec, pipeline)

	handle, err := c.Stream(context.Background(), types.ChatRequest{})
	require.NoError(t, err)

	var got []types.ChatStreamEvent
	for ev := range handle.Events() {
		got = append(got, ev)
	}
	assert.Equal(t, want, got)
	assert.False(t, called, "HTTP call should have been skipped")
}

func TestClient_AsEmbedding_SupportedWhenCapabilityPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"embed-v1"}`))
	}))
	defer srv.Close()

	c := newFakeClient(t, srv.URL, provider.CapabilityChat.With(provider.CapabilityEmbedding))
	handle, ok := c.AsEmbedding()
	require.True(t, ok)

	resp, err := handle.Embed(context.Background(), types.EmbeddingRequest{Input: []string{"hi"}})
	require.NoError(t, err)
	assert.Equal(t, "embed-v1", resp.Model)
}

func TestClient_AsEmbedding_UnsupportedWithoutCapability(t *testing.T) {
	c := newFakeClient(t, "http://unused", provider.CapabilityChat)
	_, ok := c.AsEmbedding()
	assert.False(t, ok)
}

func TestClient_AsRerank_UnsupportedWithoutCapability(t *testing.T) {
	c := newFakeClient(t, "http://unused", provider.CapabilityChat)
	_, ok := c.AsRerank()
	assert.False(t, ok)
}

func TestClient_AsFileManagement_UnsupportedWithoutCapability(t *testing.T) {
	c := newFakeClient(t, "http://unused", provider.CapabilityChat)
	_, ok := c.AsFileManagement()
	assert.False(t, ok)
}

func TestClient_ProviderID(t *testing.T) {
	c := newFakeClient(t, "http://unused", provider.CapabilityChat)
	assert.Equal(t, "fake", c.ProviderID())
}

func TestClient_PlaceholderCapabilities_AlwaysUnsupported(t *testing.T) {
	c := newFakeClient(t, "http://unused", provider.Capability(0))
	_, ok := c.AsVision()
	assert.False(t, ok)
	_, ok = c.AsImageGeneration()
	assert.False(t, ok)
	_, ok = c.AsModelListing()
	assert.False(t, ok)
}
