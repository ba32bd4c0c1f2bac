package dialogue

// QuickReply is a predefined clickable response option tied to a stage.
type QuickReply struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Sentinel values for quick replies that do something other than advance the
// script.
const (
	IndustryOther = "other"
	DetailsBook   = "book_call"
	DetailsMore   = "tell_more"
)

var industryReplies = []QuickReply{
	{Label: "Healthcare", Value: "Healthcare"},
	{Label: "Finance", Value: "Finance"},
	{Label: "Retail & E-commerce", Value: "Retail"},
	{Label: "Manufacturing", Value: "Manufacturing"},
	{Label: "Real Estate", Value: "Real Estate"},
	{Label: "Something else", Value: IndustryOther},
}

var departmentReplies = []QuickReply{
	{Label: "Sales", Value: "Sales"},
	{Label: "Marketing", Value: "Marketing"},
	{Label: "Operations", Value: "Operations"},
	{Label: "Customer Support", Value: "Customer Support"},
}

var detailsReplies = []QuickReply{
	{Label: "Book a call", Value: DetailsBook},
	{Label: "Tell me more", Value: DetailsMore},
}

// QuickRepliesFor returns the static option list for a stage. FreeForm has
// no scripted options.
func QuickRepliesFor(stage Stage) []QuickReply {
	switch stage {
	case StageIndustry:
		return industryReplies
	case StageDepartment:
		return departmentReplies
	case StageDetails:
		return detailsReplies
	}
	return nil
}

// LabelFor returns the display label for a quick-reply value at a stage.
func LabelFor(stage Stage, value string) (string, bool) {
	for _, qr := range QuickRepliesFor(stage) {
		if qr.Value == value {
			return qr.Label, true
		}
	}
	return "", false
}

func knownReply(stage Stage, value string) bool {
	for _, qr := range QuickRepliesFor(stage) {
		if qr.Value == value {
			return true
		}
	}
	return false
}
