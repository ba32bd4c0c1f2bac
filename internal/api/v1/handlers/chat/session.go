package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/nurtura/leadline/internal/services/dialogue"
	"github.com/nurtura/leadline/internal/services/recommend"
	"github.com/nurtura/leadline/internal/services/session"
	"github.com/nurtura/leadline/pkg/httpext"
)

// SnapshotView is the wire representation of a conversation returned to the
// widget.
type SnapshotView struct {
	SessionID     string                `json:"session_id"`
	Stage         dialogue.Stage        `json:"stage"`
	Messages      []session.Message     `json:"messages"`
	Cards         []recommend.Card      `json:"cards,omitempty"`
	QuickReplies  []dialogue.QuickReply `json:"quick_replies,omitempty"`
	TextInput     bool                  `json:"text_input,omitempty"`
	BookingPrompt bool                  `json:"booking_prompt,omitempty"`
}

func viewOf(snap *session.Snapshot) SnapshotView {
	return SnapshotView{
		SessionID:     snap.ID,
		Stage:         snap.Stage,
		Messages:      snap.Messages,
		Cards:         snap.Cards,
		QuickReplies:  dialogue.QuickRepliesFor(snap.Stage),
		TextInput:     snap.AwaitingIndustry || snap.Stage == dialogue.StageFreeForm,
		BookingPrompt: snap.BookingPromptShown,
	}
}

// HandleCreateSession starts a new conversation and sets the session cookie.
func HandleCreateSession(sessions *session.Service, w http.ResponseWriter, r *http.Request) {
	snap, err := sessions.Create(r.Context(), w)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create chat session")
		httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	log.Info().Str("session_id", snap.ID).Str("client_ip", r.RemoteAddr).Msg("Chat session created")
	writeJSON(w, http.StatusCreated, viewOf(snap))
}

// HandleGetSession returns the stored conversation for a reconnecting widget.
func HandleGetSession(sessions *session.Service, w http.ResponseWriter, r *http.Request) {
	snap, err := sessions.Load(r.Context(), r)
	if errors.Is(err, session.ErrNotFound) {
		httpext.JsonError(w, "No active session", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load chat session")
		httpext.JsonError(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(snap))
}

// HandleResetSession discards the conversation and clears the cookie.
func HandleResetSession(sessions *session.Service, w http.ResponseWriter, r *http.Request) {
	sessions.Clear(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
