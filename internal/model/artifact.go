package model

import "encoding/json"

// ArtifactStatus tracks the generation lifecycle, independent of verification
type ArtifactStatus string

const (
	ArtifactGenerating ArtifactStatus = "GENERATING"
	ArtifactCompleted  ArtifactStatus = "COMPLETED"
	ArtifactFailed     ArtifactStatus = "FAILED"
)

// ArtifactType names the content schema an artifact conforms to
type ArtifactType string

const (
	// ArtifactDrillSeries is phase-organized practice drills plus lesson
	// sections. The only type currently supporting targeted repair.
	ArtifactDrillSeries ArtifactType = "drill-series"
)

// SupportsPartialRepair reports whether failing claims can be rewritten in
// place rather than regenerating the whole artifact.
func (t ArtifactType) SupportsPartialRepair() bool {
	return t == ArtifactDrillSeries
}

// Artifact is the persisted record this subsystem reads and writes.
// Content is the raw generated content tree; verification overlays a second
// status axis on a COMPLETED artifact.
type Artifact struct {
	ID                   string             `json:"id"`
	Type                 ArtifactType       `json:"type"`
	Status               ArtifactStatus     `json:"status"`
	VerificationStatus   VerificationStatus `json:"verification_status"`
	VerificationAttempts int                `json:"verification_attempts"`
	VerificationDetails  *RunReport         `json:"verification_details,omitempty"`
	ErrorMessage         string             `json:"error_message,omitempty"`
	Content              json.RawMessage    `json:"content"`
}
