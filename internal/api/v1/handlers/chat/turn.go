package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/nurtura/leadline/internal/services/dialogue"
	"github.com/nurtura/leadline/internal/services/recommend"
	"github.com/nurtura/leadline/internal/services/session"
	"github.com/nurtura/leadline/internal/services/turn"
	"github.com/nurtura/leadline/pkg/httpext"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// TurnResponse is the REST turn result: the updated conversation plus the
// side signals the websocket surface would have streamed.
type TurnResponse struct {
	SnapshotView
	OpenBooking bool `json:"open_booking,omitempty"`
}

// collectingSink gathers turn side signals for the synchronous REST surface.
// Reveal steps are collapsed; only the final conversation state is returned.
type collectingSink struct {
	openBooking bool
	failed      string
}

func (c *collectingSink) MessageAppended(int, session.Message)               {}
func (c *collectingSink) MessageUpdated(int, session.Message)                {}
func (c *collectingSink) Typing(bool)                                        {}
func (c *collectingSink) CardsAdded([]recommend.Card)                        {}
func (c *collectingSink) QuickReplies(dialogue.Stage, []dialogue.QuickReply) {}
func (c *collectingSink) TextInput()                                         {}
func (c *collectingSink) OpenBooking()                                       { c.openBooking = true }
func (c *collectingSink) BookingPrompt()                                     {}
func (c *collectingSink) TurnFailed(reason string)                           { c.failed = reason }

// HandleTurn runs one complete chat turn synchronously.
func HandleTurn(sessions *session.Service, completions turn.Completions, w http.ResponseWriter, r *http.Request) {
	var action turn.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(action); err != nil {
		log.Warn().Err(err).Msg("Turn request validation failed")
		httpext.JsonError(w, "Invalid turn request", http.StatusBadRequest)
		return
	}

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

	sink := &collectingSink{}
	orch, err := turn.New(snap, completions, sessions, sink, turn.Options{
		// The REST surface has nothing to progressively reveal to, so both
		// pacing delays collapse to effectively zero.
		RevealDelay:   time.Nanosecond,
		ScriptedDelay: time.Nanosecond,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", snap.ID).Msg("Stored session snapshot is invalid")
		httpext.JsonError(w, "Invalid session state", http.StatusInternalServerError)
		return
	}
	defer orch.Close()

	log.Info().
		Str("session_id", snap.ID).
		Str("action", action.Type).
		Str("client_ip", r.RemoteAddr).
		Msg("Processing chat turn")

	if err := orch.Handle(r.Context(), action); err != nil {
		switch {
		case errors.Is(err, dialogue.ErrUnknownQuickReply):
			httpext.JsonError(w, "Quick reply not valid for current stage", http.StatusBadRequest)
		case errors.Is(err, turn.ErrBackendUnavailable):
			httpext.JsonError(w, "Assistant backend unavailable", http.StatusServiceUnavailable)
		default:
			log.Error().Err(err).Str("session_id", snap.ID).Msg("Chat turn failed")
			httpext.JsonError(w, "Failed to process turn", http.StatusInternalServerError)
		}
		return
	}

	if sink.failed != "" {
		httpext.JsonError(w, sink.failed, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, TurnResponse{
		SnapshotView: viewOf(orch.Snapshot()),
		OpenBooking:  sink.openBooking,
	})
}
