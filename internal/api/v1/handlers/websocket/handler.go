package websocket

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nurtura/leadline/internal/services/dialogue"
	"github.com/nurtura/leadline/internal/services/recommend"
	"github.com/nurtura/leadline/internal/services/session"
	"github.com/nurtura/leadline/internal/services/turn"
	"github.com/nurtura/leadline/pkg/httpext"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The widget key middleware already gates the route; the widget is
		// embedded on arbitrary customer origins.
		return true
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Event is one outbound frame on the chat stream.
type Event struct {
	Type         string                `json:"type"`
	Index        int                   `json:"index,omitempty"`
	Message      *session.Message      `json:"message,omitempty"`
	Messages     []session.Message     `json:"messages,omitempty"`
	Cards        []recommend.Card      `json:"cards,omitempty"`
	Stage        dialogue.Stage        `json:"stage,omitempty"`
	QuickReplies []dialogue.QuickReply `json:"quick_replies,omitempty"`
	Active       bool                  `json:"active"`
	Reason       string                `json:"reason,omitempty"`
}

// connSink streams orchestrator events to the widget. Writes are serialized;
// the orchestrator may emit from its own goroutines.
type connSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *connSink) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(ev); err != nil {
		log.Debug().Err(err).Msg("Failed to write chat stream event")
	}
}

func (s *connSink) MessageAppended(index int, msg session.Message) {
	s.send(Event{Type: "message_appended", Index: index, Message: &msg})
}

func (s *connSink) MessageUpdated(index int, msg session.Message) {
	s.send(Event{Type: "message_updated", Index: index, Message: &msg})
}

func (s *connSink) Typing(active bool) {
	s.send(Event{Type: "typing", Active: active})
}

func (s *connSink) CardsAdded(cards []recommend.Card) {
	s.send(Event{Type: "cards_added", Cards: cards})
}

func (s *connSink) QuickReplies(stage dialogue.Stage, replies []dialogue.QuickReply) {
	s.send(Event{Type: "quick_replies", Stage: stage, QuickReplies: replies})
}

func (s *connSink) TextInput() {
	s.send(Event{Type: "text_input", Active: true})
}

func (s *connSink) OpenBooking() {
	s.send(Event{Type: "open_booking", Active: true})
}

func (s *connSink) BookingPrompt() {
	s.send(Event{Type: "booking_prompt", Active: true})
}

func (s *connSink) TurnFailed(reason string) {
	s.send(Event{Type: "error", Reason: reason})
}

// HandleChatStream upgrades the connection and runs the conversation over
// it: inbound frames are user actions, outbound frames are turn events.
func HandleChatStream(sessions *session.Service, completions turn.Completions, w http.ResponseWriter, r *http.Request) {
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

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sink := &connSink{conn: conn}
	orch, err := turn.New(snap, completions, sessions, sink, turn.Options{Async: true})
	if err != nil {
		log.Error().Err(err).Str("session_id", snap.ID).Msg("Stored session snapshot is invalid")
		sink.send(Event{Type: "error", Reason: "Invalid session state"})
		return
	}
	// Teardown aborts any in-flight transport read and reveal.
	defer orch.Close()

	log.Info().Str("session_id", snap.ID).Str("client_ip", r.RemoteAddr).Msg("Chat stream opened")

	// Replay current state so a reconnecting widget can redraw.
	sink.send(Event{
		Type:         "session",
		Messages:     snap.Messages,
		Cards:        snap.Cards,
		Stage:        snap.Stage,
		QuickReplies: dialogue.QuickRepliesFor(snap.Stage),
	})

	for {
		var action turn.Action
		if err := conn.ReadJSON(&action); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", snap.ID).Msg("Chat stream closed unexpectedly")
			}
			return
		}

		if err := validate.Struct(action); err != nil {
			sink.send(Event{Type: "error", Reason: "Invalid action"})
			continue
		}

		if err := orch.Handle(r.Context(), action); err != nil {
			switch {
			case errors.Is(err, dialogue.ErrUnknownQuickReply):
				sink.send(Event{Type: "error", Reason: "Quick reply not valid for current stage"})
			case errors.Is(err, turn.ErrBackendUnavailable):
				sink.send(Event{Type: "error", Reason: "Assistant backend unavailable"})
			default:
				log.Error().Err(err).Str("session_id", snap.ID).Msg("Chat turn failed")
				sink.send(Event{Type: "error", Reason: "Failed to process turn"})
			}
		}
	}
}
