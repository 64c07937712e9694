package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/identity"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/repositories"
)

// CreateEvidenceInput describes one content-addressed fact bundle. StableKey
// is chosen by the producing engine and must be unique within (engine, kind)
// for the dataset version; it is the last component of the derived id.
type CreateEvidenceInput struct {
	DatasetVersionID uuid.UUID
	EngineID         string
	Kind             string
	StableKey        string
	Payload          models.Payload
	CreatedAt        time.Time
}

// CreateFindingInput describes one asserted analytical result and its
// mandatory source record.
type CreateFindingInput struct {
	DatasetVersionID uuid.UUID
	RawRecordID      uuid.UUID
	Kind             string
	StableKey        string
	Payload          models.Payload
	CreatedAt        time.Time
}

// CreateLinkInput binds a finding to a supporting piece of evidence.
type CreateLinkInput struct {
	FindingID  uuid.UUID
	EvidenceID uuid.UUID
	CreatedAt  time.Time
}

// LedgerService is the write surface for evidence, findings, and their
// links. Every create derives its identifier, validates the dataset version
// precondition, and goes through the immutability guard; all three operations
// are idempotent and safe to retry with identical arguments.
type LedgerService interface {
	CreateEvidence(ctx context.Context, input CreateEvidenceInput) (*models.EvidenceRecord, error)
	CreateFinding(ctx context.Context, input CreateFindingInput) (*models.FindingRecord, error)
	CreateLink(ctx context.Context, input CreateLinkInput) (*models.FindingEvidenceLink, error)
	ListEvidence(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.EvidenceRecord, error)
	// ListFindings returns the traceability view: each finding with its
	// source record key and linked evidence ids.
	ListFindings(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingWithContext, error)
}

type ledgerService struct {
	versions DatasetVersionService
	guard    ImmutabilityGuard
	evidence repositories.EvidenceRepository
	findings repositories.FindingRepository
	logger   *zap.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	versions DatasetVersionService,
	guard ImmutabilityGuard,
	evidence repositories.EvidenceRepository,
	findings repositories.FindingRepository,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		versions: versions,
		guard:    guard,
		evidence: evidence,
		findings: findings,
		logger:   logger.Named("ledger-service"),
	}
}

var _ LedgerService = (*ledgerService)(nil)

func (s *ledgerService) CreateEvidence(ctx context.Context, input CreateEvidenceInput) (*models.EvidenceRecord, error) {
	if err := s.versions.Require(ctx, input.DatasetVersionID); err != nil {
		return nil, err
	}

	record := &models.EvidenceRecord{
		ID:               identity.EvidenceID(input.DatasetVersionID, input.EngineID, input.Kind, input.StableKey),
		DatasetVersionID: input.DatasetVersionID,
		EngineID:         input.EngineID,
		Kind:             input.Kind,
		Payload:          input.Payload,
		CreatedAt:        input.CreatedAt,
	}

	stored, err := s.guard.CreateEvidence(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create evidence: %w", err)
	}
	return stored, nil
}

func (s *ledgerService) CreateFinding(ctx context.Context, input CreateFindingInput) (*models.FindingRecord, error) {
	// Reject orphan findings before touching the registry or the store.
	if input.RawRecordID == uuid.Nil {
		return nil, apperrors.ErrFindingSourceMissing
	}
	if err := s.versions.Require(ctx, input.DatasetVersionID); err != nil {
		return nil, err
	}

	record := &models.FindingRecord{
		ID:               identity.FindingID(input.DatasetVersionID, input.RawRecordID, input.Kind, input.StableKey),
		DatasetVersionID: input.DatasetVersionID,
		RawRecordID:      input.RawRecordID,
		Kind:             input.Kind,
		Payload:          input.Payload,
		CreatedAt:        input.CreatedAt,
	}

	stored, err := s.guard.CreateFinding(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create finding: %w", err)
	}
	return stored, nil
}

func (s *ledgerService) CreateLink(ctx context.Context, input CreateLinkInput) (*models.FindingEvidenceLink, error) {
	// No existence pre-check here: callers have just created both ends, and
	// the storage-level foreign keys reject dangling targets.
	link := &models.FindingEvidenceLink{
		ID:         identity.LinkID(input.FindingID, input.EvidenceID),
		FindingID:  input.FindingID,
		EvidenceID: input.EvidenceID,
		CreatedAt:  input.CreatedAt,
	}

	stored, err := s.guard.CreateLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("create finding-evidence link: %w", err)
	}
	return stored, nil
}

func (s *ledgerService) ListEvidence(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.EvidenceRecord, error) {
	if err := s.versions.Require(ctx, datasetVersionID); err != nil {
		return nil, err
	}
	return s.evidence.ListByDatasetVersion(ctx, datasetVersionID)
}

func (s *ledgerService) ListFindings(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingWithContext, error) {
	if err := s.versions.Require(ctx, datasetVersionID); err != nil {
		return nil, err
	}
	return s.findings.ListWithContext(ctx, datasetVersionID)
}
