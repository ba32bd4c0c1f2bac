package stream

import (
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Accumulator collects the incremental text deltas carried by stream frames
// into the full assistant reply. The reply is only meaningful once the frame
// sequence is exhausted; partial text is never handed downstream.
type Accumulator struct {
	reply    strings.Builder
	complete bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add consumes one frame. Payloads that fail to decode, or that lack the
// delta content field, contribute an empty delta rather than an error.
func (a *Accumulator) Add(frame Frame) {
	if frame.Done {
		a.complete = true
		return
	}

	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(frame.Payload), &chunk); err != nil {
		return
	}
	if len(chunk.Choices) == 0 {
		return
	}

	a.reply.WriteString(chunk.Choices[0].Delta.Content)
}

// Complete reports whether the done sentinel was observed.
func (a *Accumulator) Complete() bool {
	return a.complete
}

// Reply returns the text accumulated so far.
func (a *Accumulator) Reply() string {
	return a.reply.String()
}
