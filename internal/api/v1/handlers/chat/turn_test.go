package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurtura/leadline/internal/services/dialogue"
	"github.com/nurtura/leadline/internal/services/session"
)

type stubCompletions struct {
	reply string
	calls int
}

func (s *stubCompletions) StreamReply(ctx context.Context, messages []openai.ChatCompletionMessage) (io.ReadCloser, error) {
	s.calls++
	var body strings.Builder
	for _, word := range strings.SplitAfter(s.reply, " ") {
		fmt.Fprintf(&body, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", word)
	}
	body.WriteString("data: [DONE]\n\n")
	return io.NopCloser(strings.NewReader(body.String())), nil
}

func createSession(t *testing.T, sessions *session.Service) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/session", nil)

	HandleCreateSession(sessions, rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func postTurn(t *testing.T, sessions *session.Service, completions *stubCompletions, cookie *http.Cookie, action map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(action)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/turn", bytes.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}

	if completions != nil {
		HandleTurn(sessions, completions, rec, req)
	} else {
		HandleTurn(sessions, nil, rec, req)
	}
	return rec
}

func TestHandleCreateSession(t *testing.T) {
	sessions := session.NewService(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/session", nil)

	HandleCreateSession(sessions, rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var view SnapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, dialogue.StageIndustry, view.Stage)
	require.Len(t, view.Messages, 1)
	assert.Equal(t, session.RoleAssistant, view.Messages[0].Role)
	assert.Len(t, view.QuickReplies, len(dialogue.QuickRepliesFor(dialogue.StageIndustry)))
}

func TestHandleGetSession(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/chat/session", nil)
	req.AddCookie(cookie)

	HandleGetSession(sessions, rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view SnapshotView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, dialogue.StageIndustry, view.Stage)
}

func TestHandleGetSessionWithoutCookie(t *testing.T) {
	sessions := session.NewService(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/chat/session", nil)

	HandleGetSession(sessions, rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTurnScripted(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)

	rec := postTurn(t, sessions, nil, cookie, map[string]string{"type": "quick_reply", "value": "Healthcare"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dialogue.StageDepartment, resp.Stage)
	require.Len(t, resp.Messages, 3)
	assert.Contains(t, resp.Messages[2].Content, "Healthcare")

	// The transition persisted: a reload sees the same stage.
	rec2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/chat/session", nil)
	req.AddCookie(cookie)
	HandleGetSession(sessions, rec2, req)

	var view SnapshotView
	require.NoError(t, json.NewDecoder(rec2.Body).Decode(&view))
	assert.Equal(t, dialogue.StageDepartment, view.Stage)
}

func TestHandleTurnFreeForm(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)
	completions := &stubCompletions{reply: "Happy to walk you through it."}

	// Drive the script into FreeForm, then ask a real question.
	for _, action := range []map[string]string{
		{"type": "quick_reply", "value": "Healthcare"},
		{"type": "quick_reply", "value": "Operations"},
		{"type": "quick_reply", "value": dialogue.DetailsMore},
	} {
		rec := postTurn(t, sessions, completions, cookie, action)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, 1, completions.calls, "tell-me-more opens a stream turn")

	rec := postTurn(t, sessions, completions, cookie, map[string]string{
		"type": "text", "value": "how would automation help our reporting?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dialogue.StageFreeForm, resp.Stage)

	last := resp.Messages[len(resp.Messages)-1]
	assert.Equal(t, session.RoleAssistant, last.Role)
	assert.Equal(t, "Happy to walk you through it.", last.Content)
	assert.False(t, last.Revealing)

	var titles []string
	for _, card := range resp.Cards {
		titles = append(titles, card.Title)
	}
	assert.Contains(t, titles, "Workflow Automation")
	assert.Contains(t, titles, "Decision Analytics")
}

func TestHandleTurnBooking(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)

	postTurn(t, sessions, nil, cookie, map[string]string{"type": "quick_reply", "value": "Finance"})
	postTurn(t, sessions, nil, cookie, map[string]string{"type": "quick_reply", "value": "Sales"})

	rec := postTurn(t, sessions, nil, cookie, map[string]string{"type": "quick_reply", "value": dialogue.DetailsBook})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.OpenBooking)
	assert.Equal(t, dialogue.StageDetails, resp.Stage, "booking holds the stage")
}

func TestHandleTurnRejections(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)

	tests := []struct {
		name   string
		cookie *http.Cookie
		body   string
		status int
	}{
		{"malformed json", cookie, "not json", http.StatusBadRequest},
		{"invalid action type", cookie, `{"type":"bogus","value":"x"}`, http.StatusBadRequest},
		{"stale quick reply", cookie, `{"type":"quick_reply","value":"Sales"}`, http.StatusBadRequest},
		{"no session", nil, `{"type":"text","value":"hi"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/chat/turn", strings.NewReader(tt.body))
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			HandleTurn(sessions, nil, rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleTurnEmptyInputIsNoOp(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)

	rec := postTurn(t, sessions, nil, cookie, map[string]string{"type": "text", "value": "   "})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Messages, 1, "nothing appended for empty input")
	assert.Equal(t, dialogue.StageIndustry, resp.Stage)
}

func TestHandleTurnBackendUnavailable(t *testing.T) {
	sessions := session.NewService(nil)
	cookie := createSession(t, sessions)

	rec := postTurn(t, sessions, nil, cookie, map[string]string{"type": "text", "value": "tell me everything"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
