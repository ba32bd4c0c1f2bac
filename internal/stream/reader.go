package stream

import (
	"context"
	"fmt"
	"io"
)

const readBufferSize = 4096

// ReadReply drains the transport, decoding frames and accumulating deltas
// until the done sentinel or end of stream. A closed transport with no
// sentinel still yields the complete accumulated reply. The loop actively
// checks ctx between reads so a superseded turn stops consuming the body.
func ReadReply(ctx context.Context, r io.Reader) (string, error) {
	dec := NewDecoder()
	acc := NewAccumulator()
	buf := make([]byte, readBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := r.Read(buf)
		if n > 0 {
			for _, frame := range dec.Feed(string(buf[:n])) {
				acc.Add(frame)
				if frame.Done {
					return acc.Reply(), nil
				}
			}
		}
		if err == io.EOF {
			return acc.Reply(), nil
		}
		if err != nil {
			return "", fmt.Errorf("reading completion stream: %w", err)
		}
	}
}
