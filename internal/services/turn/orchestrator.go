package turn

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/nurtura/leadline/internal/services/dialogue"
	"github.com/nurtura/leadline/internal/services/recommend"
	"github.com/nurtura/leadline/internal/services/reveal"
	"github.com/nurtura/leadline/internal/services/session"
	"github.com/nurtura/leadline/internal/stream"
)

const (
	ActionQuickReply = "quick_reply"
	ActionText       = "text"

	// bookingPromptThreshold is the message count past which the booking
	// prompt is surfaced, once per session.
	bookingPromptThreshold = 4

	defaultRevealDelay   = reveal.DefaultStepDelay
	defaultScriptedDelay = 600 * time.Millisecond
)

// ErrBackendUnavailable is returned when a free-form turn is requested but
// no completion endpoint is configured.
var ErrBackendUnavailable = errors.New("completion backend unavailable")

// Action is one user utterance: a quick-reply click or typed text. An empty
// value is legal and handled as a no-op, so only its length is validated.
type Action struct {
	Type  string `json:"type" validate:"required,oneof=quick_reply text"`
	Value string `json:"value" validate:"max=4096"`
}

// Completions issues the backend stream request for a free-form turn.
type Completions interface {
	StreamReply(ctx context.Context, messages []openai.ChatCompletionMessage) (io.ReadCloser, error)
}

// Saver persists the session snapshot after a completed turn.
type Saver interface {
	Save(ctx context.Context, snap *session.Snapshot) error
}

// Sink receives conversation events as turns progress. Calls are made while
// the orchestrator holds its lock, so implementations must not call back in.
type Sink interface {
	MessageAppended(index int, msg session.Message)
	MessageUpdated(index int, msg session.Message)
	Typing(active bool)
	CardsAdded(cards []recommend.Card)
	QuickReplies(stage dialogue.Stage, replies []dialogue.QuickReply)
	TextInput()
	OpenBooking()
	BookingPrompt()
	TurnFailed(reason string)
}

// Options tune turn pacing. Zero values select the defaults; Async controls
// whether free-form turns run in their own goroutine (websocket surface) or
// block the caller (REST surface).
type Options struct {
	RevealDelay   time.Duration
	ScriptedDelay time.Duration
	Async         bool
}

// Orchestrator drives one conversation: it owns the snapshot and the
// dialogue machine, routes user actions, and runs the stream/reveal pipeline
// for free-form turns. At most one stream turn is in flight; starting a new
// turn invalidates the reveal of the previous one.
type Orchestrator struct {
	mu          sync.Mutex
	snap        *session.Snapshot
	machine     *dialogue.Machine
	completions Completions
	saver       Saver
	sink        Sink

	revealDelay   time.Duration
	scriptedDelay time.Duration
	async         bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	turnID     uint64
	turnCancel context.CancelFunc
}

func New(snap *session.Snapshot, completions Completions, saver Saver, sink Sink, opts Options) (*Orchestrator, error) {
	machine, err := dialogue.Restore(snap.Stage, snap.Industry, snap.Department, snap.AwaitingIndustry)
	if err != nil {
		return nil, err
	}

	if opts.RevealDelay <= 0 {
		opts.RevealDelay = defaultRevealDelay
	}
	if opts.ScriptedDelay <= 0 {
		opts.ScriptedDelay = defaultScriptedDelay
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &Orchestrator{
		snap:          snap,
		machine:       machine,
		completions:   completions,
		saver:         saver,
		sink:          sink,
		revealDelay:   opts.RevealDelay,
		scriptedDelay: opts.ScriptedDelay,
		async:         opts.Async,
		baseCtx:       baseCtx,
		baseCancel:    baseCancel,
	}, nil
}

// Snapshot returns the current conversation state.
func (o *Orchestrator) Snapshot() *session.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Close aborts any in-flight turn, including its transport read.
func (o *Orchestrator) Close() {
	o.baseCancel()
}

// Handle processes one user action end to end. Empty input is a no-op; an
// unrecognized quick reply is rejected without touching the conversation.
func (o *Orchestrator) Handle(ctx context.Context, action Action) error {
	value := strings.TrimSpace(action.Value)
	if value == "" {
		return nil
	}
	quick := action.Type == ActionQuickReply

	o.mu.Lock()

	// The user bubble shows the quick reply's label, not its wire value.
	display := value
	if quick {
		if label, ok := dialogue.LabelFor(o.machine.Stage(), value); ok {
			display = label
		}
	}

	out, err := o.machine.Submit(value, quick)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	// A new turn invalidates whatever reveal is still running.
	o.cancelInFlightLocked()

	o.appendLocked(session.Message{Role: session.RoleUser, Content: display})
	o.syncMachineLocked()

	if !quick || out.FreeForm {
		o.mergeCardsLocked(recommend.Extract(value))
	}

	if out.FreeForm {
		if o.completions == nil {
			o.mu.Unlock()
			return ErrBackendUnavailable
		}
		turnCtx, id := o.beginTurnLocked()
		history := o.historyLocked()
		o.sink.Typing(true)
		o.mu.Unlock()

		if o.async {
			go o.streamTurn(turnCtx, id, history)
			return nil
		}
		o.streamTurn(turnCtx, id, history)
		return nil
	}

	// Scripted transition: local, no network. One fixed pause emulates
	// typing before the synthesized reply appears.
	o.sink.Typing(true)
	o.mu.Unlock()

	select {
	case <-time.After(o.scriptedDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.sink.Typing(false)
	if out.Reply != "" {
		o.appendLocked(session.Message{Role: session.RoleAssistant, Content: out.Reply})
	}
	if out.TextInput {
		o.sink.TextInput()
	}
	if out.OpenBooking {
		o.sink.OpenBooking()
	}
	if len(out.QuickReplies) > 0 {
		o.sink.QuickReplies(out.Stage, out.QuickReplies)
	}
	o.maybeBookingPromptLocked()
	o.saveLocked(ctx)
	return nil
}

// streamTurn drives the decode → accumulate → reveal pipeline for one
// free-form turn. Everything it touches is guarded by the turn id so a
// superseded turn discards its own results.
func (o *Orchestrator) streamTurn(ctx context.Context, id uint64, history []openai.ChatCompletionMessage) {
	body, err := o.completions.StreamReply(ctx, history)
	if err != nil {
		o.failTurn(id, err)
		return
	}
	defer body.Close()

	reply, err := stream.ReadReply(ctx, body)
	if err != nil {
		o.failTurn(id, err)
		return
	}
	if reply == "" {
		o.failTurn(id, errors.New("completion endpoint returned an empty reply"))
		return
	}

	o.mu.Lock()
	if o.turnID != id {
		o.mu.Unlock()
		return
	}
	o.sink.Typing(false)
	index := o.appendLocked(session.Message{Role: session.RoleAssistant, Revealing: true})
	o.mu.Unlock()

	err = reveal.Run(ctx, reply, o.revealDelay, func(step reveal.Step) {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.turnID != id {
			return
		}
		o.snap.Messages[index].Content = step.Content
		o.snap.Messages[index].Revealing = step.Revealing
		o.sink.MessageUpdated(index, o.snap.Messages[index])
	})
	if err != nil {
		// Superseded mid-reveal; the newer turn owns the log now.
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.turnID != id {
		return
	}
	o.maybeBookingPromptLocked()
	o.saveLocked(o.baseCtx)
}

// failTurn clears the typing indicator and reports the failure. No message
// is appended and nothing is retried.
func (o *Orchestrator) failTurn(id uint64, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.turnID != id {
		return
	}

	log.Error().Err(err).Str("session_id", o.snap.ID).Msg("Stream turn failed")
	o.sink.Typing(false)
	o.sink.TurnFailed("The assistant could not answer just now.")
}

func (o *Orchestrator) beginTurnLocked() (context.Context, uint64) {
	o.turnID++
	ctx, cancel := context.WithCancel(o.baseCtx)
	o.turnCancel = cancel
	return ctx, o.turnID
}

func (o *Orchestrator) cancelInFlightLocked() {
	if o.turnCancel != nil {
		o.turnCancel()
		o.turnCancel = nil
	}

	// Bump the turn id so a goroutine already blocked on the lock fails its
	// stale check instead of applying one more step.
	o.turnID++

	// Finalize any half-revealed message so only the newest assistant
	// message can ever carry the revealing flag.
	for i := range o.snap.Messages {
		if o.snap.Messages[i].Revealing {
			o.snap.Messages[i].Revealing = false
			o.sink.MessageUpdated(i, o.snap.Messages[i])
		}
	}
}

func (o *Orchestrator) appendLocked(msg session.Message) int {
	o.snap.Messages = append(o.snap.Messages, msg)
	index := len(o.snap.Messages) - 1
	o.sink.MessageAppended(index, msg)
	return index
}

func (o *Orchestrator) syncMachineLocked() {
	o.snap.Stage = o.machine.Stage()
	o.snap.Industry = o.machine.Industry()
	o.snap.Department = o.machine.Department()
	o.snap.AwaitingIndustry = o.machine.AwaitingIndustry()
}

func (o *Orchestrator) mergeCardsLocked(extracted []recommend.Card) {
	merged := recommend.Merge(o.snap.Cards, extracted)
	if len(merged) > len(o.snap.Cards) {
		added := merged[len(o.snap.Cards):]
		o.snap.Cards = merged
		o.sink.CardsAdded(added)
	}
}

func (o *Orchestrator) maybeBookingPromptLocked() {
	if o.snap.BookingPromptShown || len(o.snap.Messages) <= bookingPromptThreshold {
		return
	}
	o.snap.BookingPromptShown = true
	o.sink.BookingPrompt()
}

func (o *Orchestrator) saveLocked(ctx context.Context) {
	if err := o.saver.Save(ctx, o.snap); err != nil {
		log.Error().Err(err).Str("session_id", o.snap.ID).Msg("Failed to persist session snapshot")
	}
}

func (o *Orchestrator) historyLocked() []openai.ChatCompletionMessage {
	history := make([]openai.ChatCompletionMessage, 0, len(o.snap.Messages))
	for _, msg := range o.snap.Messages {
		history = append(history, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return history
}
