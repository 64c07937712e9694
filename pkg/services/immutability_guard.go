package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/repositories"
)

// ImmutabilityGuard is the single enforcement point for every ledger write.
// It owns the idempotent-create-with-conflict-detection algorithm: look up the
// record by its deterministic id, insert if absent, otherwise compare the
// immutable fields and reject any divergence. Services receive the guard by
// injection and never call repository inserts directly, so no write path can
// bypass conflict detection.
type ImmutabilityGuard interface {
	CreateRawRecord(ctx context.Context, record *models.RawRecord) (*models.RawRecord, error)
	CreateEvidence(ctx context.Context, record *models.EvidenceRecord) (*models.EvidenceRecord, error)
	CreateFinding(ctx context.Context, record *models.FindingRecord) (*models.FindingRecord, error)
	CreateLink(ctx context.Context, link *models.FindingEvidenceLink) (*models.FindingEvidenceLink, error)
}

type immutabilityGuard struct {
	rawRecords repositories.RawRecordRepository
	evidence   repositories.EvidenceRepository
	findings   repositories.FindingRepository
	links      repositories.LinkRepository
	logger     *zap.Logger
}

// NewImmutabilityGuard creates a new ImmutabilityGuard over the four
// append-only repositories.
func NewImmutabilityGuard(
	rawRecords repositories.RawRecordRepository,
	evidence repositories.EvidenceRepository,
	findings repositories.FindingRepository,
	links repositories.LinkRepository,
	logger *zap.Logger,
) ImmutabilityGuard {
	return &immutabilityGuard{
		rawRecords: rawRecords,
		evidence:   evidence,
		findings:   findings,
		links:      links,
		logger:     logger.Named("immutability-guard"),
	}
}

var _ ImmutabilityGuard = (*immutabilityGuard)(nil)

func (g *immutabilityGuard) CreateRawRecord(ctx context.Context, record *models.RawRecord) (*models.RawRecord, error) {
	record.PayloadFingerprint = record.Payload.Fingerprint()

	stored, err := createImmutable(ctx, record, record.ID,
		g.rawRecords.GetByID, g.rawRecords.Insert, (*models.RawRecord).DivergentFields)
	if err != nil {
		return nil, g.reject(err, "raw_record", record.ID, "")
	}
	return stored, nil
}

func (g *immutabilityGuard) CreateEvidence(ctx context.Context, record *models.EvidenceRecord) (*models.EvidenceRecord, error) {
	record.PayloadFingerprint = record.Payload.Fingerprint()

	stored, err := createImmutable(ctx, record, record.ID,
		g.evidence.GetByID, g.evidence.Insert, (*models.EvidenceRecord).DivergentFields)
	if err != nil {
		return nil, g.reject(err, "evidence", record.ID, record.EngineID)
	}
	return stored, nil
}

func (g *immutabilityGuard) CreateFinding(ctx context.Context, record *models.FindingRecord) (*models.FindingRecord, error) {
	// A finding with no traceable source record is a caller bug; reject
	// before any read or write.
	if record.RawRecordID == uuid.Nil {
		return nil, apperrors.ErrFindingSourceMissing
	}
	record.PayloadFingerprint = record.Payload.Fingerprint()

	stored, err := createImmutable(ctx, record, record.ID,
		g.findings.GetByID, g.findings.Insert, (*models.FindingRecord).DivergentFields)
	if err != nil {
		return nil, g.reject(err, "finding", record.ID, "")
	}
	return stored, nil
}

func (g *immutabilityGuard) CreateLink(ctx context.Context, link *models.FindingEvidenceLink) (*models.FindingEvidenceLink, error) {
	stored, err := createImmutable(ctx, link, link.ID,
		g.links.GetByID, g.links.Insert, (*models.FindingEvidenceLink).DivergentFields)
	if err != nil {
		return nil, g.reject(err, "link", link.ID, "")
	}
	return stored, nil
}

// reject logs immutability conflicts with enough structure to debug
// non-deterministic engine logic, and passes every error through unchanged.
func (g *immutabilityGuard) reject(err error, entity string, id uuid.UUID, engineID string) error {
	var conflict *apperrors.ImmutableConflictError
	if errors.As(err, &conflict) {
		conflict.EngineID = engineID
		g.logger.Warn("Immutable conflict rejected",
			zap.String("entity", entity),
			zap.String("id", id.String()),
			zap.String("engine_id", engineID),
			zap.Strings("divergent_fields", conflict.Fields))
	}
	return err
}

// createImmutable is the shared read-existing/compare-or-insert sequence.
// Racing writers with identical content both succeed with at most one
// physical insert: the loser of the insert race falls through to the re-read
// and compares equal. Racing writers with divergent content leave exactly one
// of them with a conflict error.
func createImmutable[T any](
	ctx context.Context,
	candidate *T,
	id uuid.UUID,
	get func(context.Context, uuid.UUID) (*T, error),
	insert func(context.Context, *T) error,
	divergentFields func(*T, *T) []string,
) (*T, error) {
	stored, err := get(ctx, id)
	switch {
	case err == nil:
		return compareImmutable(candidate, stored, id, divergentFields)
	case errors.Is(err, apperrors.ErrNotFound):
		// fall through to insert
	default:
		return nil, err
	}

	err = insert(ctx, candidate)
	if err == nil {
		return candidate, nil
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return nil, err
	}

	// Lost an insert race; the stored row decides.
	stored, err = get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("re-read after insert race: %w", err)
	}
	return compareImmutable(candidate, stored, id, divergentFields)
}

func compareImmutable[T any](
	candidate, stored *T,
	id uuid.UUID,
	divergentFields func(*T, *T) []string,
) (*T, error) {
	fields := divergentFields(stored, candidate)
	if len(fields) == 0 {
		// Idempotent re-submission; return the stored record unchanged.
		return stored, nil
	}
	return nil, &apperrors.ImmutableConflictError{
		Entity: entityName(candidate),
		ID:     id.String(),
		Fields: fields,
	}
}

func entityName(v any) string {
	switch v.(type) {
	case *models.RawRecord:
		return "raw_record"
	case *models.EvidenceRecord:
		return "evidence"
	case *models.FindingRecord:
		return "finding"
	case *models.FindingEvidenceLink:
		return "link"
	default:
		return "record"
	}
}
