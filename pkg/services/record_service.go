package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/identity"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/repositories"
)

// IngestRawRecordInput carries one unit of source data into the ledger.
// CreatedAt is caller-supplied metadata; it never participates in identity or
// conflict comparison, and the ledger never reads the system clock for it.
type IngestRawRecordInput struct {
	DatasetVersionID uuid.UUID
	SourceKey        string
	Payload          models.Payload
	CreatedAt        time.Time
}

// RecordService is the raw/normalized record store bound to a dataset
// version. Raw ingestion goes through the immutability guard, so replayed
// ingestion of an identical snapshot is a no-op and divergent re-ingestion is
// rejected.
type RecordService interface {
	IngestRawRecord(ctx context.Context, input IngestRawRecordInput) (*models.RawRecord, error)
	ListRawRecords(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.RawRecord, error)
	ListNormalizedRecords(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.NormalizedRecord, error)
}

type recordService struct {
	versions   DatasetVersionService
	guard      ImmutabilityGuard
	rawRecords repositories.RawRecordRepository
	normalized repositories.NormalizedRecordRepository
	logger     *zap.Logger
}

// NewRecordService creates a new RecordService.
func NewRecordService(
	versions DatasetVersionService,
	guard ImmutabilityGuard,
	rawRecords repositories.RawRecordRepository,
	normalized repositories.NormalizedRecordRepository,
	logger *zap.Logger,
) RecordService {
	return &recordService{
		versions:   versions,
		guard:      guard,
		rawRecords: rawRecords,
		normalized: normalized,
		logger:     logger.Named("record-service"),
	}
}

var _ RecordService = (*recordService)(nil)

func (s *recordService) IngestRawRecord(ctx context.Context, input IngestRawRecordInput) (*models.RawRecord, error) {
	if err := s.versions.Require(ctx, input.DatasetVersionID); err != nil {
		return nil, err
	}
	if input.SourceKey == "" {
		return nil, fmt.Errorf("source_key must not be empty")
	}

	record := &models.RawRecord{
		ID:               identity.RawRecordID(input.DatasetVersionID, input.SourceKey),
		DatasetVersionID: input.DatasetVersionID,
		SourceKey:        input.SourceKey,
		Payload:          input.Payload,
		CreatedAt:        input.CreatedAt,
	}

	stored, err := s.guard.CreateRawRecord(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("ingest raw record: %w", err)
	}
	return stored, nil
}

func (s *recordService) ListRawRecords(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.RawRecord, error) {
	if err := s.versions.Require(ctx, datasetVersionID); err != nil {
		return nil, err
	}
	return s.rawRecords.ListByDatasetVersion(ctx, datasetVersionID)
}

func (s *recordService) ListNormalizedRecords(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.NormalizedRecord, error) {
	if err := s.versions.Require(ctx, datasetVersionID); err != nil {
		return nil, err
	}
	return s.normalized.ListByDatasetVersion(ctx, datasetVersionID)
}
