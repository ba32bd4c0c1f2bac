// Package reveal replays a completed assistant reply as a progressive
// word-by-word sequence, emulating typing. The full reply is already in hand
// before the first step; this is presentation pacing, not network streaming.
package reveal

import (
	"context"
	"strings"
	"time"
)

// DefaultStepDelay is the fixed pause between word-reveal steps.
const DefaultStepDelay = 40 * time.Millisecond

// Step is one partial render of the reply. Content is always a space-joined
// prefix of the reply's word sequence; Revealing is false only on the final
// step.
type Step struct {
	Content   string
	Revealing bool
}

// Run splits reply on single spaces and emits one Step per word with a fixed
// delay between steps. The sequence is one-shot and stops immediately when
// ctx is canceled; remaining steps are never applied. The delay of the very
// first word is applied before it is shown, so a canceled run may emit
// nothing at all.
func Run(ctx context.Context, reply string, delay time.Duration, emit func(Step)) error {
	words := strings.Split(reply, " ")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	var partial strings.Builder
	for i, word := range words {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if i > 0 {
			partial.WriteByte(' ')
		}
		partial.WriteString(word)

		emit(Step{
			Content:   partial.String(),
			Revealing: i < len(words)-1,
		})

		timer.Reset(delay)
	}

	return nil
}
