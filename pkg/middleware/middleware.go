// Package middleware implements the chat middleware pipeline: an ordered
// list of hooks that can transform a request, short-circuit before HTTP,
// observe streaming events, and annotate a response after generation.
// Grounded on the teacher's middleware.LanguageModelMiddleware, generalized
// from a single wrap-around type into an explicit ordered Pipeline with
// pre-generate/pre-stream short circuits the teacher's type did not have.
package middleware

import (
	"context"

	"github.com/corvidai/gollm/pkg/types"
)

// Middleware is a named bundle of optional hooks. A nil hook is skipped.
type Middleware struct {
	Name string

	// OverrideProvider and OverrideModelID carry a provider/model id on the
	// middleware. They are stored only: neither Pipeline nor pkg/client reads
	// them, so setting them does not redirect the request.
	OverrideProvider string
	OverrideModelID  string

	// TransformParams rewrites the request before it reaches the provider
	// transformer. Every registered middleware's TransformParams runs, in
	// registration order.
	TransformParams func(ctx context.Context, req types.ChatRequest) (types.ChatRequest, error)

	// PreGenerate runs immediately before a non-streaming HTTP call. Return
	// a non-nil *types.ChatResponse to short-circuit and skip the call
	// entirely (e.g. a caching middleware serving a hit).
	PreGenerate func(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)

	// PreStream is PreGenerate's streaming counterpart: returning a non-nil
	// event slice short-circuits stream establishment.
	PreStream func(ctx context.Context, req types.ChatRequest) ([]types.ChatStreamEvent, error)

	// PostGenerate runs after a successful non-streaming call, in reverse
	// registration order (innermost middleware sees the response first).
	PostGenerate func(ctx context.Context, req types.ChatRequest, resp types.ChatResponse) (types.ChatResponse, error)

	// OnStreamEvent runs per unified stream event, in reverse registration
	// order, and may rewrite or multiply events (e.g. annotating StreamEnd
	// with warnings).
	OnStreamEvent func(ctx context.Context, req types.ChatRequest, event types.ChatStreamEvent) ([]types.ChatStreamEvent, error)
}

// Pipeline is an ordered set of Middleware applied to one chat call.
type Pipeline struct {
	Stages []Middleware
}

// NewPipeline builds a Pipeline from stages in registration order.
func NewPipeline(stages ...Middleware) *Pipeline {
	return &Pipeline{Stages: stages}
}

// ApplyTransform runs every stage's TransformParams in registration order.
func (p *Pipeline) ApplyTransform(ctx context.Context, req types.ChatRequest) (types.ChatRequest, error) {
	for _, stage := range p.Stages {
		if stage.TransformParams == nil {
			continue
		}
		var err error
		req, err = stage.TransformParams(ctx, req)
		if err != nil {
			return req, err
		}
		if stage.OverrideProvider != "" || stage.OverrideModelID != "" {
			// Nothing consumes the provider/model overrides; the request
			// passes on unchanged.
		}
	}
	return req, nil
}

// RunPreGenerate runs PreGenerate hooks in reverse registration order,
// stopping at the first non-nil short-circuit response, so the middleware
// registered last (closest to the transport) is consulted first.
func (p *Pipeline) RunPreGenerate(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	for i := len(p.Stages) - 1; i >= 0; i-- {
		stage := p.Stages[i]
		if stage.PreGenerate == nil {
			continue
		}
		resp, err := stage.PreGenerate(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}
	return nil, nil
}

// RunPreStream runs PreStream hooks in reverse registration order, stopping
// at the first non-nil short-circuit event set.
func (p *Pipeline) RunPreStream(ctx context.Context, req types.ChatRequest) ([]types.ChatStreamEvent, error) {
	for i := len(p.Stages) - 1; i >= 0; i-- {
		stage := p.Stages[i]
		if stage.PreStream == nil {
			continue
		}
		events, err := stage.PreStream(ctx, req)
		if err != nil {
			return nil, err
		}
		if events != nil {
			return events, nil
		}
	}
	return nil, nil
}

// RunPostGenerate runs PostGenerate hooks in reverse registration order, so
// the middleware registered last (closest to the transport) annotates the
// response first.
func (p *Pipeline) RunPostGenerate(ctx context.Context, req types.ChatRequest, resp types.ChatResponse) (types.ChatResponse, error) {
	for i := len(p.Stages) - 1; i >= 0; i-- {
		stage := p.Stages[i]
		if stage.PostGenerate == nil {
			continue
		}
		var err error
		resp, err = stage.PostGenerate(ctx, req, resp)
		if err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// RunOnStreamEvent runs OnStreamEvent hooks in reverse registration order,
// threading each stage's output events into the next stage's input.
func (p *Pipeline) RunOnStreamEvent(ctx context.Context, req types.ChatRequest, event types.ChatStreamEvent) ([]types.ChatStreamEvent, error) {
	events := []types.ChatStreamEvent{event}
	for i := len(p.Stages) - 1; i >= 0; i-- {
		stage := p.Stages[i]
		if stage.OnStreamEvent == nil {
			continue
		}
		var next []types.ChatStreamEvent
		for _, ev := range events {
			out, err := stage.OnStreamEvent(ctx, req, ev)
			if err != nil {
				return nil, err
			}
			next = append(next, out...)
		}
		events = next
	}
	return events, nil
}
