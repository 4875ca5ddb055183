package model

import "fmt"

// ClaimSource identifies where in the artifact content a claim was found
type ClaimSource string

const (
	ClaimSourceDrill   ClaimSource = "drill"   // Drill recommended-move field
	ClaimSourceSection ClaimSource = "section" // Prose assertion inside a lesson section
)

// Location points back into the artifact content tree for repair targeting.
// For drills, Phase and Drill are indices; for lesson sections, Section names
// the section title.
type Location struct {
	Source  ClaimSource `json:"source"`
	Phase   int         `json:"phase,omitempty"`
	Drill   int         `json:"drill,omitempty"`
	Section string      `json:"section,omitempty"`
}

func (l Location) String() string {
	switch l.Source {
	case ClaimSourceDrill:
		return fmt.Sprintf("phase[%d].drill[%d]", l.Phase, l.Drill)
	case ClaimSourceSection:
		return fmt.Sprintf("section[%q]", l.Section)
	default:
		return "unknown"
	}
}

// Claim is a verifiable move assertion extracted from generated content.
// Immutable once created. A claim maps to exactly one Position; claims whose
// position could not be reconstructed are marked Skipped instead.
type Claim struct {
	Move     string    `json:"move"`               // Claimed best move, as written in the content
	Location Location  `json:"location"`           // Where the claim lives, for repair targeting
	Position *Position `json:"position,omitempty"` // nil when Skipped
	Skipped  bool      `json:"skipped,omitempty"`
	SkipNote string    `json:"skip_note,omitempty"` // Why the claim was not checked
}
