package recommend

// CardKind classifies a recommendation card for the widget's routing layer.
type CardKind string

const (
	KindAutomation  CardKind = "automation"
	KindChatbot     CardKind = "chatbot"
	KindAnalytics   CardKind = "analytics"
	KindIntegration CardKind = "integration"
	KindVoice       CardKind = "voice"
	KindROI         CardKind = "roi"
)

// Card is a contextual suggestion surfaced from keywords in free text.
// Cards are set-keyed by Title; a card already in the session is never
// duplicated.
type Card struct {
	Kind        CardKind `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Metric      string   `json:"metric,omitempty"`
}

type rule struct {
	keywords []string
	card     Card
}

// rules is the ordered trigger table. A rule fires when any of its keywords
// is a case-insensitive substring of the utterance; output preserves
// declaration order.
var rules = []rule{
	{
		keywords: []string{"automat", "workflow", "manual", "repetitive"},
		card: Card{
			Kind:        KindAutomation,
			Title:       "Workflow Automation",
			Description: "Hand repetitive intake, routing and follow-up work to an always-on pipeline.",
			Metric:      "up to 30h saved per week",
		},
	},
	{
		keywords: []string{"chat", "support", "faq", "answer"},
		card: Card{
			Kind:        KindChatbot,
			Title:       "AI Support Assistant",
			Description: "Resolve the routine questions instantly and escalate the rest with full context.",
			Metric:      "70% of tickets deflected",
		},
	},
	{
		keywords: []string{"report", "dashboard", "data", "analytic", "insight"},
		card: Card{
			Kind:        KindAnalytics,
			Title:       "Decision Analytics",
			Description: "Turn scattered spreadsheets into live dashboards your team actually reads.",
		},
	},
	{
		keywords: []string{"crm", "salesforce", "hubspot", "integrat", "api"},
		card: Card{
			Kind:        KindIntegration,
			Title:       "CRM & Tool Integration",
			Description: "Connect the tools you already use so data stops living in silos.",
		},
	},
	{
		keywords: []string{"call", "phone", "voice", "reception"},
		card: Card{
			Kind:        KindVoice,
			Title:       "Voice Agents",
			Description: "Answer every call, qualify the lead and book the meeting before a human picks up.",
			Metric:      "24/7 coverage",
		},
	},
	{
		keywords: []string{"cost", "price", "roi", "budget", "save"},
		card: Card{
			Kind:        KindROI,
			Title:       "ROI Estimate",
			Description: "See what automation would return for your team size and volume.",
		},
	},
}
