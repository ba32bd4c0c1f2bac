package stream

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"

	// maxResyncAttempts bounds how many times the same undecodable line is
	// held back waiting for the rest of a split chunk before it is dropped.
	maxResyncAttempts = 3
)

// Frame is one decoded unit of the completion stream protocol: either a raw
// JSON payload or the end-of-stream sentinel.
type Frame struct {
	Payload string
	Done    bool
}

// Decoder reassembles raw transport chunks into protocol frames. Chunks
// arrive in transport order but are not aligned to line boundaries, so the
// decoder keeps a carry-over buffer of the unterminated tail.
type Decoder struct {
	carry       string
	done        bool
	resyncLine  string
	resyncCount int
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Done reports whether the end-of-stream sentinel has been observed.
func (d *Decoder) Done() bool {
	return d.done
}

// Feed appends a chunk to the carry-over buffer and returns every frame that
// can be extracted from complete lines, in order. Once the done sentinel has
// been seen, further input is ignored.
func (d *Decoder) Feed(chunk string) []Frame {
	if d.done {
		return nil
	}

	d.carry += chunk

	var frames []Frame
	for {
		idx := strings.IndexByte(d.carry, '\n')
		if idx < 0 {
			return frames
		}

		line := strings.TrimSuffix(d.carry[:idx], "\r")
		d.carry = d.carry[idx+1:]

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") {
			// Blank separators and comment/heartbeat lines carry no payload.
			continue
		}

		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := line[len(dataPrefix):]

		if strings.TrimSpace(payload) == doneSentinel {
			d.done = true
			frames = append(frames, Frame{Done: true})
			return frames
		}

		if !json.Valid([]byte(payload)) {
			// Assume the line was split across chunk boundaries: put it back
			// in front of the buffer and wait for more input. A line that
			// stays invalid after repeated attempts is dropped rather than
			// blocking the stream forever.
			if line == d.resyncLine {
				d.resyncCount++
			} else {
				d.resyncLine = line
				d.resyncCount = 1
			}

			if d.resyncCount >= maxResyncAttempts {
				log.Warn().
					Int("attempts", d.resyncCount).
					Str("line", line).
					Msg("Dropping stream line that never became valid JSON")
				d.resyncLine = ""
				d.resyncCount = 0
				continue
			}

			d.carry = line + "\n" + d.carry
			return frames
		}

		d.resyncLine = ""
		d.resyncCount = 0
		frames = append(frames, Frame{Payload: payload})
	}
}
