package engines

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

// EngineCoverage is the built-in normalization coverage check.
const EngineCoverage = "coverage"

// CoverageEngine flags raw records that the normalization stage never
// produced a counterpart for. It is the one engine shipped with the ledger
// itself; the analytical engines live in their own services and call the HTTP
// surface.
type CoverageEngine struct{}

// NewCoverageEngine creates a new CoverageEngine.
func NewCoverageEngine() *CoverageEngine {
	return &CoverageEngine{}
}

var _ Engine = (*CoverageEngine)(nil)

// ID returns the engine identifier.
func (e *CoverageEngine) ID() string {
	return EngineCoverage
}

// Analyze emits one finding per raw record without a normalized counterpart,
// each supported by an evidence bundle recording the counts observed. Output
// depends only on the input snapshot, so re-runs reproduce identical drafts.
func (e *CoverageEngine) Analyze(ctx context.Context, input *AnalysisInput) ([]*Result, error) {
	covered := make(map[uuid.UUID]int, len(input.NormalizedRecords))
	for _, record := range input.NormalizedRecords {
		covered[record.RawRecordID]++
	}

	var results []*Result
	for _, raw := range input.RawRecords {
		if covered[raw.ID] > 0 {
			continue
		}

		findingPayload, err := models.NewPayload([]byte(fmt.Sprintf(
			`{"source_key":%q,"raw_record_id":%q}`, raw.SourceKey, raw.ID)))
		if err != nil {
			return nil, fmt.Errorf("build coverage finding payload: %w", err)
		}
		evidencePayload, err := models.NewPayload([]byte(fmt.Sprintf(
			`{"raw_record_id":%q,"normalized_count":0,"raw_total":%d,"normalized_total":%d}`,
			raw.ID, len(input.RawRecords), len(input.NormalizedRecords))))
		if err != nil {
			return nil, fmt.Errorf("build coverage evidence payload: %w", err)
		}

		results = append(results, &Result{
			Finding: FindingDraft{
				RawRecordID: raw.ID,
				Kind:        "normalization_gap",
				StableKey:   raw.SourceKey,
				Payload:     findingPayload,
			},
			Evidence: []EvidenceDraft{{
				Kind:      "coverage_count",
				StableKey: raw.SourceKey,
				Payload:   evidencePayload,
			}},
		})
	}

	return results, nil
}
