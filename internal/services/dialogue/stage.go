package dialogue

// Stage is the current position in the scripted portion of the dialogue.
// Stages advance Industry → Department → Details → FreeForm and never move
// backward; FreeForm is absorbing.
type Stage string

const (
	StageIndustry   Stage = "industry"
	StageDepartment Stage = "department"
	StageDetails    Stage = "details"
	StageFreeForm   Stage = "freeform"
)

// Valid reports whether s is one of the known stages. Snapshots loaded from
// storage pass through here before being trusted.
func (s Stage) Valid() bool {
	switch s {
	case StageIndustry, StageDepartment, StageDetails, StageFreeForm:
		return true
	}
	return false
}
