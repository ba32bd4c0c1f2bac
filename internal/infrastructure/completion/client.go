package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/nurtura/leadline/internal/config"
)

// Service is the client for the upstream text-completion endpoint. The
// endpoint is opaque: it accepts a conversation history and returns a
// newline-framed streamed reply.
type Service struct {
	httpClient *http.Client
	url        string
	key        string
}

type request struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// NewService reads the endpoint configuration. Returns nil when the
// endpoint is not configured; free-form turns are then unavailable.
func NewService() *Service {
	url := config.GetCompletionURL()
	key := config.GetCompletionKey()
	if url == "" || key == "" {
		log.Warn().Msg("Completion endpoint not configured - COMPLETION_URL or COMPLETION_KEY missing")
		return nil
	}

	return &Service{
		// No overall timeout: the body is a long-lived stream. Connection
		// setup is bounded separately.
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		url: url,
		key: key,
	}
}

// StreamReply posts the full turn history and returns the streaming response
// body. The caller owns closing the body.
func (s *Service) StreamReply(ctx context.Context, messages []openai.ChatCompletionMessage) (io.ReadCloser, error) {
	body, err := json.Marshal(request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.key)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}
	if resp.Body == nil {
		return nil, fmt.Errorf("completion endpoint returned no body")
	}

	return resp.Body, nil
}
