package streaming

import "github.com/corvidai/gollm/pkg/types"

// Converter turns one raw provider frame (an SSE Event, or one JSON-lines
// line carried as raw bytes in JSONLine) into zero or more unified stream
// events.
// Convert must be total: an unrecognized or ignorable frame (an Anthropic
// "ping", a Gemini keep-alive) returns an empty slice rather than an error.
type Converter interface {
	// Convert processes one raw frame and returns the unified events it
	// produces, if any.
	Convert(raw RawFrame) ([]types.ChatStreamEvent, error)

	// Finish is called once the underlying transport closes cleanly, giving
	// the converter a chance to flush any buffered partial state (e.g. a
	// block whose content_block_stop never arrived) into a final event.
	Finish() ([]types.ChatStreamEvent, error)
}

// RawFrame is one unit of provider stream data handed to a Converter. Event
// is populated for SSE-based providers (OpenAI, Anthropic, Gemini, xAI,
// Groq); JSONLine is populated for newline-delimited-JSON providers
// (Ollama).
type RawFrame struct {
	Event    *Event
	JSONLine []byte
}
