package streaming

import (
	"bufio"
	"io"
	"strings"
)

// Event is one parsed Server-Sent Events frame.
type Event struct {
	Event string
	Data  string
	ID    string
	Retry string
}

// Reader incrementally parses an SSE byte stream into Events. It tolerates
// both "\n" and "\r\n" line endings and ignores comment lines (those
// starting with ":").
type Reader struct {
	scanner *bufio.Scanner
	err     error
}

// NewReader wraps r in a line-buffered SSE Reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next event, or ok=false once the stream is exhausted or
// errored (check Err to distinguish the two).
func (p *Reader) Next() (Event, bool) {
	var event Event
	var dataLines []string
	sawField := false

	for p.scanner.Scan() {
		line := strings.TrimSuffix(p.scanner.Text(), "\r")

		if line == "" {
			if sawField {
				event.Data = strings.Join(dataLines, "\n")
				return event, true
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		sawField = true

		switch field {
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			event.ID = value
		case "retry":
			event.Retry = value
		}
	}

	if err := p.scanner.Err(); err != nil {
		p.err = err
		return Event{}, false
	}

	if sawField {
		event.Data = strings.Join(dataLines, "\n")
		return event, true
	}
	return Event{}, false
}

// Err returns the first error encountered while scanning, if any.
func (p *Reader) Err() error {
	return p.err
}

func splitField(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value
}

// IsDone reports whether event is the vendor-agnostic end-of-stream
// sentinel: a literal "[DONE]" data payload (OpenAI-style) or an explicit
// "done" event name.
func IsDone(event Event) bool {
	return event.Data == "[DONE]" || event.Event == "done"
}
