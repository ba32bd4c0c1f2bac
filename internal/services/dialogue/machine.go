package dialogue

import (
	"errors"
	"fmt"
)

// ErrUnknownQuickReply is returned when a quick-reply value does not belong
// to the current stage's option set, e.g. a click from a stale widget.
var ErrUnknownQuickReply = errors.New("quick reply not valid for current stage")

// Outcome describes what one user action produced: either a scripted local
// transition with a synthesized reply, or a routing decision to hand the
// utterance to the streaming pipeline.
type Outcome struct {
	// Scripted is true when the machine handled the action locally. Reply
	// then holds the synthesized assistant message (may be empty for pure
	// signals such as booking).
	Scripted bool
	Reply    string

	// FreeForm is true when the utterance must be sent to the completion
	// backend as a stream turn.
	FreeForm bool

	// TextInput is true when the widget should switch to free-text entry
	// (the custom-industry detour).
	TextInput bool

	// OpenBooking is true when the booking collaborator should be opened.
	OpenBooking bool

	Stage        Stage
	QuickReplies []QuickReply
}

// Machine owns the scripted portion of the dialogue: the current stage, the
// recorded industry and department, and the custom-industry detour flag.
type Machine struct {
	stage            Stage
	industry         string
	department       string
	awaitingIndustry bool
}

func NewMachine() *Machine {
	return &Machine{stage: StageIndustry}
}

// Restore rebuilds a machine from a persisted snapshot.
func Restore(stage Stage, industry, department string, awaitingIndustry bool) (*Machine, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("invalid dialogue stage %q", stage)
	}
	return &Machine{
		stage:            stage,
		industry:         industry,
		department:       department,
		awaitingIndustry: awaitingIndustry,
	}, nil
}

func (m *Machine) Stage() Stage               { return m.stage }
func (m *Machine) Industry() string           { return m.industry }
func (m *Machine) Department() string         { return m.department }
func (m *Machine) AwaitingIndustry() bool     { return m.awaitingIndustry }
func (m *Machine) QuickReplies() []QuickReply { return QuickRepliesFor(m.stage) }

// Submit processes one user action. quickReply reports whether value came
// from a quick-reply control rather than typed text.
func (m *Machine) Submit(value string, quickReply bool) (Outcome, error) {
	if m.stage == StageFreeForm {
		return Outcome{FreeForm: true, Stage: m.stage}, nil
	}

	if quickReply {
		if !knownReply(m.stage, value) {
			return Outcome{}, ErrUnknownQuickReply
		}
		return m.applyQuickReply(value), nil
	}

	// Typed text during the custom-industry detour is treated as if the
	// matching quick reply had been chosen.
	if m.stage == StageIndustry && m.awaitingIndustry {
		m.awaitingIndustry = false
		return m.chooseIndustry(value), nil
	}

	// Any other typed text during a scripted stage routes to the backend
	// without advancing the script.
	return Outcome{FreeForm: true, Stage: m.stage}, nil
}

func (m *Machine) applyQuickReply(value string) Outcome {
	switch m.stage {
	case StageIndustry:
		if value == IndustryOther {
			m.awaitingIndustry = true
			return Outcome{
				Scripted:  true,
				Reply:     "No problem — tell me a bit about your industry and I'll point you in the right direction.",
				TextInput: true,
				Stage:     m.stage,
			}
		}
		return m.chooseIndustry(value)

	case StageDepartment:
		m.department = value
		m.stage = StageDetails
		return Outcome{
			Scripted: true,
			Reply: fmt.Sprintf(
				"Got it. For %s teams in %s we usually start by automating the repetitive work — intake, follow-ups, reporting. Want to book a quick call, or hear more first?",
				m.department, m.industry),
			Stage:        m.stage,
			QuickReplies: QuickRepliesFor(m.stage),
		}

	case StageDetails:
		if value == DetailsBook {
			// Booking opens the external collaborator; the stage holds.
			return Outcome{
				Scripted:     true,
				Reply:        "Perfect — pick a time that works for you and we'll take it from there.",
				OpenBooking:  true,
				Stage:        m.stage,
				QuickReplies: QuickRepliesFor(m.stage),
			}
		}
		// "Tell me more" is the only way into FreeForm.
		m.stage = StageFreeForm
		return Outcome{FreeForm: true, Stage: m.stage}
	}

	return Outcome{FreeForm: true, Stage: m.stage}
}

func (m *Machine) chooseIndustry(industry string) Outcome {
	m.industry = industry
	m.stage = StageDepartment
	return Outcome{
		Scripted: true,
		Reply: fmt.Sprintf(
			"%s is a space where we see a lot of untapped potential. Which department are you looking to improve?",
			m.industry),
		Stage:        m.stage,
		QuickReplies: QuickRepliesFor(m.stage),
	}
}
