// Package client implements the polymorphic client: one Client value wraps
// a provider.Spec and an httpexec.Executor, and exposes capability-gated
// downcast accessors matching spec.md's "capability bitset + typed handle"
// pattern for a language without runtime trait-object downcasts. Grounded on
// the teacher's provider.Provider interface, generalized from
// provider-returns-model to client-returns-capability-handle.
package client

import (
	"context"
	"net/http"

	"github.com/corvidai/gollm/pkg/httpexec"
	"github.com/corvidai/gollm/pkg/middleware"
	"github.com/corvidai/gollm/pkg/provider"
	"github.com/corvidai/gollm/pkg/streaming"
	"github.com/corvidai/gollm/pkg/types"
)

// Client is the single entry point every vendor package is built against.
// Most callers only need Generate/Stream; the As* accessors expose optional
// capability surfaces.
type Client struct {
	spec     provider.Spec
	ctx      provider.Context
	exec     *httpexec.Executor
	pipeline *middleware.Pipeline

	capabilities provider.Capability
	handles      map[provider.Capability]any
}

// New builds a Client over spec, authenticated and routed per ctx, executing
// HTTP through exec and running every chat call through pipeline (which may
// be nil).
func New(spec provider.Spec, ctx provider.Context, exec *httpexec.Executor, pipeline *middleware.Pipeline) *Client {
	if pipeline == nil {
		pipeline = middleware.NewPipeline()
	}
	c := &Client{
		spec:         spec,
		ctx:          ctx,
		exec:         exec,
		pipeline:     pipeline,
		capabilities: spec.Capabilities(),
		handles:      make(map[provider.Capability]any),
	}
	c.handles[provider.CapabilityEmbedding] = &embeddingHandle{c}
	c.handles[provider.CapabilityRerank] = &rerankHandle{c}
	c.handles[provider.CapabilityFileManagement] = &filesHandle{c}
	return c
}

// ProviderID returns the underlying provider.Spec's id.
func (c *Client) ProviderID() string {
	return c.spec.ID()
}

func (c *Client) headers() (http.Header, error) {
	return c.spec.BuildHeaders(c.ctx)
}

// mergeHeaders sets every key in extra onto dst, overwriting any existing
// value. extra may be nil.
func mergeHeaders(dst http.Header, extra http.Header) {
	for k, v := range extra {
		if len(v) > 0 {
			dst.Set(k, v[0])
		}
	}
}

// Generate runs one non-streaming chat completion.
func (c *Client) Generate(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	req, err := c.pipeline.ApplyTransform(ctx, req)
	if err != nil {
		return types.ChatResponse{}, err
	}

	if resp, err := c.pipeline.RunPreGenerate(ctx, req); err != nil {
		return types.ChatResponse{}, err
	} else if resp != nil {
		return *resp, nil
	}

	headers, err := c.headers()
	if err != nil {
		return types.ChatResponse{}, err
	}
	mergeHeaders(headers, c.spec.ChatExtraHeaders(req, c.ctx))

	transformers := c.spec.ChooseChatTransformers(req, c.ctx)
	body, err := transformers.Request.TransformChat(req)
	if err != nil {
		return types.ChatResponse{}, err
	}
	body = c.spec.ChatBeforeSend(body, req, c.ctx)

	url := c.spec.ChatURL(req, c.ctx)
	raw, err := c.exec.ExecuteJSON(ctx, c.spec.ID(), url, headers, body)
	if err != nil {
		return types.ChatResponse{}, err
	}

	decoded, err := httpexec.DecodeJSON(raw)
	if err != nil {
		return types.ChatResponse{}, err
	}

	resp, err := transformers.Response.TransformChatResponse(decoded)
	if err != nil {
		return types.ChatResponse{}, err
	}

	return c.pipeline.RunPostGenerate(ctx, req, resp)
}

// StreamHandle exposes the live unified event channel, already passed
// through the middleware pipeline's OnStreamEvent hooks, plus a Cancel
// method that also triggers any provider-specific remote cancellation (see
// pkg/providers/openai's Responses API support).
type StreamHandle struct {
	events chan types.ChatStreamEvent
	errc   chan error
	inner  *streaming.Stream
}

// Events returns the unified event channel. It is closed once the stream
// ends; check Err afterward.
func (h *StreamHandle) Events() <-chan types.ChatStreamEvent {
	return h.events
}

// Err returns the terminal error, if the stream ended abnormally.
func (h *StreamHandle) Err() error {
	select {
	case err := <-h.errc:
		return err
	default:
		return h.inner.Err()
	}
}

// Cancel aborts the stream.
func (h *StreamHandle) Cancel() {
	h.inner.Cancel()
}

// Stream runs one streaming chat completion.
func (c *Client) Stream(ctx context.Context, req types.ChatRequest) (*StreamHandle, error) {
	req.Stream = true
	req, err := c.pipeline.ApplyTransform(ctx, req)
	if err != nil {
		return nil, err
	}

	handle := &StreamHandle{
		events: make(chan types.ChatStreamEvent, 16),
		errc:   make(chan error, 1),
	}

	if shortCircuit, err := c.pipeline.RunPreStream(ctx, req); err != nil {
		return nil, err
	} else if shortCircuit != nil {
		go func() {
			defer close(handle.events)
			for _, ev := range shortCircuit {
				handle.events <- ev
			}
		}()
		return handle, nil
	}

	headers, err := c.headers()
	if err != nil {
		return nil, err
	}
	mergeHeaders(headers, c.spec.ChatExtraHeaders(req, c.ctx))

	transformers := c.spec.ChooseChatTransformers(req, c.ctx)
	body, err := transformers.Request.TransformChat(req)
	if err != nil {
		return nil, err
	}
	body["stream"] = true
	body = c.spec.ChatBeforeSend(body, req, c.ctx)

	url := c.spec.ChatURL(req, c.ctx)

	respBody, _, err := c.exec.ExecuteStreamJSON(ctx, c.spec.ID(), url, headers, body)
	if err != nil {
		return nil, err
	}

	inner := streaming.New(ctx, respBody, transformers.StreamMode, transformers.Converter, transformers.CancelNotifier)
	handle.inner = inner

	go func() {
		defer close(handle.events)
		for ev := range inner.Events() {
			out, err := c.pipeline.RunOnStreamEvent(ctx, req, ev)
			if err != nil {
				handle.errc <- err
				return
			}
			for _, o := range out {
				select {
				case handle.events <- o:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := inner.Err(); err != nil {
			handle.errc <- err
		}
	}()

	return handle, nil
}
