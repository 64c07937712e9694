package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/database"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

// RawRecordRepository provides data access for immutable ingested source
// records.
type RawRecordRepository interface {
	Insert(ctx context.Context, record *models.RawRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RawRecord, error)
	ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.RawRecord, error)
}

type rawRecordRepository struct{}

// NewRawRecordRepository creates a new RawRecordRepository.
func NewRawRecordRepository() RawRecordRepository {
	return &rawRecordRepository{}
}

var _ RawRecordRepository = (*rawRecordRepository)(nil)

func (r *rawRecordRepository) Insert(ctx context.Context, record *models.RawRecord) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_raw_records (
			id, dataset_version_id, source_key, payload, payload_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := scope.Conn.Exec(ctx, query,
		record.ID,
		record.DatasetVersionID,
		record.SourceKey,
		json.RawMessage(record.Payload),
		record.PayloadFingerprint,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert raw record: %w", translatePgError(err))
	}

	return nil
}

func (r *rawRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RawRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, dataset_version_id, source_key, payload, payload_fingerprint, created_at
		FROM ledger_raw_records
		WHERE id = $1`

	record, err := scanRawRecord(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get raw record: %w", err)
	}

	return record, nil
}

func (r *rawRecordRepository) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.RawRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, dataset_version_id, source_key, payload, payload_fingerprint, created_at
		FROM ledger_raw_records
		WHERE dataset_version_id = $1
		ORDER BY source_key`

	rows, err := scope.Conn.Query(ctx, query, datasetVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw records: %w", err)
	}
	defer rows.Close()

	var records []*models.RawRecord
	for rows.Next() {
		record, err := scanRawRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raw records: %w", err)
	}

	return records, nil
}

func scanRawRecord(row pgx.Row) (*models.RawRecord, error) {
	record := &models.RawRecord{}
	var payload []byte
	err := row.Scan(
		&record.ID,
		&record.DatasetVersionID,
		&record.SourceKey,
		&payload,
		&record.PayloadFingerprint,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Re-canonicalize so the Payload invariant holds after the jsonb round
	// trip.
	record.Payload, err = models.NewPayload(payload)
	if err != nil {
		return nil, err
	}
	return record, nil
}
