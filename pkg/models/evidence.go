package models

import (
	"time"

	"github.com/google/uuid"
)

// EvidenceRecord is a content-addressed fact bundle supporting findings:
// source pointers, assumptions, computed intermediates. For a given id, the
// dataset version, engine, kind, and payload are fixed for all time.
type EvidenceRecord struct {
	ID               uuid.UUID `json:"id"`
	DatasetVersionID uuid.UUID `json:"dataset_version_id"`
	EngineID         string    `json:"engine_id"`
	Kind             string    `json:"kind"`
	Payload          Payload   `json:"payload"`
	// PayloadFingerprint is the SHA-256 of the canonical payload bytes,
	// computed once at write time and used for conflict comparison.
	PayloadFingerprint string    `json:"payload_fingerprint"`
	CreatedAt          time.Time `json:"created_at"`
}

// DivergentFields compares the immutability scope of two evidence records
// sharing an id: (dataset_version_id, engine_id, kind, payload).
func (e *EvidenceRecord) DivergentFields(other *EvidenceRecord) []string {
	var fields []string
	if e.DatasetVersionID != other.DatasetVersionID {
		fields = append(fields, "dataset_version_id")
	}
	if e.EngineID != other.EngineID {
		fields = append(fields, "engine_id")
	}
	if e.Kind != other.Kind {
		fields = append(fields, "kind")
	}
	if e.PayloadFingerprint != other.PayloadFingerprint {
		fields = append(fields, "payload")
	}
	return fields
}
