package session

import (
	"time"

	"github.com/nurtura/leadline/internal/services/dialogue"
	"github.com/nurtura/leadline/internal/services/recommend"
)

// Message roles, aligned with the completion endpoint's wire values.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation log. Revealing marks an assistant
// message whose progressive reveal has not finished; at most the newest
// message carries it.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Revealing bool   `json:"revealing,omitempty"`
}

// Snapshot is the full persisted state of one conversation.
type Snapshot struct {
	ID               string           `json:"id"`
	Stage            dialogue.Stage   `json:"stage"`
	Industry         string           `json:"industry,omitempty"`
	Department       string           `json:"department,omitempty"`
	AwaitingIndustry bool             `json:"awaiting_industry,omitempty"`
	Messages         []Message        `json:"messages"`
	Cards            []recommend.Card `json:"cards,omitempty"`

	// BookingPromptShown records that the nudge has fired, so a reconnect
	// cannot re-trigger it.
	BookingPromptShown bool      `json:"booking_prompt_shown,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

const greeting = "Hi there! I help teams figure out where AI can take work off their plate. What industry are you in?"

// NewSnapshot builds the initial conversation: the opening assistant message
// and the first scripted stage.
func NewSnapshot(id string) *Snapshot {
	return &Snapshot{
		ID:        id,
		Stage:     dialogue.StageIndustry,
		Messages:  []Message{{Role: RoleAssistant, Content: greeting}},
		CreatedAt: time.Now(),
	}
}
