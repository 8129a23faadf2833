package client

import (
	"context"

	"github.com/corvidai/gollm/pkg/types"
)

// ChatClient is the minimal interface *Client satisfies; Wrapper is built
// against this interface rather than the concrete type so test doubles and
// decorating wrappers (retry-wrapping, logging, metrics) can stand in for a
// real Client. Grounded on spec.md §4.8's ClientWrapper.
type ChatClient interface {
	ProviderID() string
	Generate(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)
	Stream(ctx context.Context, req types.ChatRequest) (*StreamHandle, error)
}

// Wrapper delegates every operation to an inner ChatClient. It exists so
// decorating behavior (a logging layer, a test double) can be composed
// without every caller needing to know whether it is holding a *Client or a
// wrapped one.
type Wrapper struct {
	Inner ChatClient
}

// NewWrapper boxes inner behind the ChatClient interface.
func NewWrapper(inner ChatClient) *Wrapper {
	return &Wrapper{Inner: inner}
}

func (w *Wrapper) ProviderID() string { return w.Inner.ProviderID() }

func (w *Wrapper) Generate(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	return w.Inner.Generate(ctx, req)
}

func (w *Wrapper) Stream(ctx context.Context, req types.ChatRequest) (*StreamHandle, error) {
	return w.Inner.Stream(ctx, req)
}

var _ ChatClient = (*Client)(nil)
