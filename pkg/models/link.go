package models

import (
	"time"

	"github.com/google/uuid"
)

// FindingEvidenceLink records that a finding is supported by a piece of
// evidence. Immutable like the records it joins.
type FindingEvidenceLink struct {
	ID         uuid.UUID `json:"id"`
	FindingID  uuid.UUID `json:"finding_id"`
	EvidenceID uuid.UUID `json:"evidence_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// DivergentFields compares the immutability scope of two links sharing an
// id: (finding_id, evidence_id).
func (l *FindingEvidenceLink) DivergentFields(other *FindingEvidenceLink) []string {
	var fields []string
	if l.FindingID != other.FindingID {
		fields = append(fields, "finding_id")
	}
	if l.EvidenceID != other.EvidenceID {
		fields = append(fields, "evidence_id")
	}
	return fields
}
