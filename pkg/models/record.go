package models

import (
	"time"

	"github.com/google/uuid"
)

// RawRecord is an immutable unit of ingested source data. Its id is derived
// from (dataset_version_id, source_key), so replayed ingestion of the same
// snapshot reproduces identical ids.
type RawRecord struct {
	ID               uuid.UUID `json:"id"`
	DatasetVersionID uuid.UUID `json:"dataset_version_id"`
	SourceKey        string    `json:"source_key"`
	Payload          Payload   `json:"payload"`
	// PayloadFingerprint is the SHA-256 of the canonical payload bytes,
	// computed once at write time. Conflict comparison uses it instead of
	// re-read payload bytes, which Postgres jsonb does not round-trip
	// byte-identically.
	PayloadFingerprint string    `json:"payload_fingerprint"`
	CreatedAt          time.Time `json:"created_at"`
}

// DivergentFields compares the immutability scope of two raw records sharing
// an id: (dataset_version_id, source_key, payload). CreatedAt is
// caller-supplied metadata and never part of the comparison.
func (r *RawRecord) DivergentFields(other *RawRecord) []string {
	var fields []string
	if r.DatasetVersionID != other.DatasetVersionID {
		fields = append(fields, "dataset_version_id")
	}
	if r.SourceKey != other.SourceKey {
		fields = append(fields, "source_key")
	}
	if r.PayloadFingerprint != other.PayloadFingerprint {
		fields = append(fields, "payload")
	}
	return fields
}

// NormalizedRecord is the engine-consumable transformation of a RawRecord,
// produced by a normalization stage outside this core and treated here as a
// read-only input.
type NormalizedRecord struct {
	ID               uuid.UUID `json:"id"`
	RawRecordID      uuid.UUID `json:"raw_record_id"`
	DatasetVersionID uuid.UUID `json:"dataset_version_id"`
	Payload          Payload   `json:"payload"`
	NormalizedAt     time.Time `json:"normalized_at"`
}
