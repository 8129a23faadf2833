package streaming

import (
	"bufio"
	"context"
	"io"

	"github.com/corvidai/gollm/pkg/types"
)

// Mode selects how the driver splits the underlying transport into frames.
type Mode int

const (
	// ModeSSE splits on SSE events (blank-line-terminated field blocks).
	ModeSSE Mode = iota
	// ModeJSONLines splits on newlines, one JSON object per line.
	ModeJSONLines
)

// CancelNotifier is invoked at most once, when the caller cancels a Stream
// after it has started, carrying the id captured from the first StreamStart
// event. Providers that support server-side cancellation (OpenAI's
// Responses API) use this to issue a best-effort remote cancel request; the
// default is a no-op.
type CancelNotifier func(streamID string)

// Stream is a single chat completion's unified event sequence. The driver
// guarantees exactly one StreamStart before any other event and exactly one
// terminal StreamEnd, regardless of whether the underlying converter
// produced them, so this invariant holds even for a converter bug.
type Stream struct {
	events chan types.ChatStreamEvent
	errc   chan error
	cancel context.CancelFunc
	body   io.Closer
}

// Events returns the channel of unified stream events. It is closed once the
// stream ends, successfully or not; check Err afterward.
func (s *Stream) Events() <-chan types.ChatStreamEvent {
	return s.events
}

// Err returns the terminal error, if the stream ended abnormally.
func (s *Stream) Err() error {
	select {
	case err := <-s.errc:
		return err
	default:
		return nil
	}
}

// Cancel stops the stream: it cancels the driving context (aborting the HTTP
// body read) and, if a CancelNotifier was supplied, fires it exactly once.
func (s *Stream) Cancel() {
	s.cancel()
	_ = s.body.Close()
}

// New drives body through converter according to mode, emitting unified
// events on the returned Stream until body is exhausted, ctx is canceled, or
// converter returns an error.
func New(ctx context.Context, body io.ReadCloser, mode Mode, converter Converter, onCancel CancelNotifier) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		events: make(chan types.ChatStreamEvent, 16),
		errc:   make(chan error, 1),
		cancel: cancel,
		body:   body,
	}

	go s.run(ctx, body, mode, converter, onCancel)
	return s
}

func (s *Stream) run(ctx context.Context, body io.ReadCloser, mode Mode, converter Converter, onCancel CancelNotifier) {
	defer close(s.events)
	defer body.Close()

	started := false
	var streamID string
	lastFinish := types.FinishUnknown
	var lastUsage types.Usage
	var lastWarnings []types.Warning
	ended := false

	defer func() {
		if ctx.Err() != nil && onCancel != nil && streamID != "" {
			onCancel(streamID)
		}
	}()

	emit := func(evs []types.ChatStreamEvent) bool {
		for _, ev := range evs {
			if ended {
				return true
			}
			switch e := ev.(type) {
			case types.StreamStart:
				if started {
					if streamID == "" {
						streamID = e.ID
					}
					continue
				}
				started = true
				streamID = e.ID
			case types.UsageUpdate:
				lastUsage = e.Usage
			case types.StreamEnd:
				ended = true
				lastFinish = e.FinishReason
				lastUsage = e.Usage
				lastWarnings = e.Warnings
			}
			if !started {
				started = true
				select {
				case s.events <- types.StreamStart{}:
				case <-ctx.Done():
					return false
				}
			}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return false
			}
		}
		return true
	}

	process := func(frame RawFrame) bool {
		evs, err := converter.Convert(frame)
		if err != nil {
			s.errc <- err
			return false
		}
		return emit(evs)
	}

	switch mode {
	case ModeSSE:
		r := NewReader(body)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			event, ok := r.Next()
			if !ok {
				break
			}
			if IsDone(event) {
				break
			}
			if !process(RawFrame{Event: &event}) {
				return
			}
		}
		if err := r.Err(); err != nil {
			s.errc <- err
			return
		}
	case ModeJSONLines:
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			cp := make([]byte, len(line))
			copy(cp, line)
			if !process(RawFrame{JSONLine: cp}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.errc <- err
			return
		}
	}

	finalEvs, err := converter.Finish()
	if err != nil {
		s.errc <- err
		return
	}
	if !emit(finalEvs) {
		return
	}

	if !started {
		select {
		case s.events <- types.StreamStart{}:
		case <-ctx.Done():
			return
		}
	}
	if !ended {
		select {
		case s.events <- types.StreamEnd{FinishReason: lastFinish, Usage: lastUsage, Warnings: lastWarnings}:
		case <-ctx.Done():
		}
	}
}
