package models

import (
	"time"

	"github.com/google/uuid"
)

// FindingRecord is an asserted analytical result, bound to exactly one
// dataset version and one source raw record. A finding without a resolvable
// source record is a caller error, never a silently accepted orphan.
type FindingRecord struct {
	ID               uuid.UUID `json:"id"`
	DatasetVersionID uuid.UUID `json:"dataset_version_id"`
	RawRecordID      uuid.UUID `json:"raw_record_id"`
	Kind             string    `json:"kind"`
	Payload          Payload   `json:"payload"`
	// PayloadFingerprint is the SHA-256 of the canonical payload bytes,
	// computed once at write time and used for conflict comparison.
	PayloadFingerprint string    `json:"payload_fingerprint"`
	CreatedAt          time.Time `json:"created_at"`
}

// DivergentFields compares the immutability scope of two findings sharing an
// id: (dataset_version_id, raw_record_id, kind, payload).
func (f *FindingRecord) DivergentFields(other *FindingRecord) []string {
	var fields []string
	if f.DatasetVersionID != other.DatasetVersionID {
		fields = append(fields, "dataset_version_id")
	}
	if f.RawRecordID != other.RawRecordID {
		fields = append(fields, "raw_record_id")
	}
	if f.Kind != other.Kind {
		fields = append(fields, "kind")
	}
	if f.PayloadFingerprint != other.PayloadFingerprint {
		fields = append(fields, "payload")
	}
	return fields
}

// FindingWithContext is the traceability read model: a finding joined with
// its source raw record key and the evidence ids linked to it.
type FindingWithContext struct {
	Finding     *FindingRecord `json:"finding"`
	SourceKey   string         `json:"source_key"`
	EvidenceIDs []uuid.UUID    `json:"evidence_ids"`
}
