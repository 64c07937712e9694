// Package engines hosts the execution contract every analytical module runs
// under. Engines own domain analysis only; all persistence flows back through
// the ledger services, so no engine can hold ledger state of its own.
package engines

import (
	"context"

	"github.com/google/uuid"

	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

// Known producer identifiers. Engine ids travel as plain strings at the
// storage boundary; new engines register here so typos surface at review
// time instead of as orphaned namespaces in the ledger.
const (
	EngineCSRD       = "csrd"
	EngineForensics  = "forensics"
	EngineLitigation = "litigation"
	EngineInsurance  = "insurance"
	EngineERP        = "erp_readiness"
)

// Engine is one analytical module. Analyze is pure domain computation: it
// receives the immutable snapshot and returns result drafts; it never writes.
type Engine interface {
	ID() string
	Analyze(ctx context.Context, input *AnalysisInput) ([]*Result, error)
}

// AnalysisInput is the read view handed to an engine: the validated dataset
// version plus its raw and normalized records.
type AnalysisInput struct {
	DatasetVersion    *models.DatasetVersion
	RawRecords        []*models.RawRecord
	NormalizedRecords []*models.NormalizedRecord
}

// Result is one analytical conclusion: a finding draft plus the evidence
// drafts that support it. The runner persists evidence first, then the
// finding, then the links.
type Result struct {
	Finding  FindingDraft
	Evidence []EvidenceDraft
}

// FindingDraft is a finding before identity derivation. RawRecordID is the
// mandatory pointer to the source record the result was derived from.
type FindingDraft struct {
	RawRecordID uuid.UUID
	Kind        string
	StableKey   string
	Payload     models.Payload
}

// EvidenceDraft is an evidence bundle before identity derivation.
type EvidenceDraft struct {
	Kind      string
	StableKey string
	Payload   models.Payload
}
