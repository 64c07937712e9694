package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/evidentia-io/evidentia-ledger/pkg/database"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

// NormalizedRecordRepository provides data access for derived records.
// Insert is the integration point for the external normalization stage; the
// ledger itself only reads.
type NormalizedRecordRepository interface {
	Insert(ctx context.Context, record *models.NormalizedRecord) error
	ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.NormalizedRecord, error)
}

type normalizedRecordRepository struct{}

// NewNormalizedRecordRepository creates a new NormalizedRecordRepository.
func NewNormalizedRecordRepository() NormalizedRecordRepository {
	return &normalizedRecordRepository{}
}

var _ NormalizedRecordRepository = (*normalizedRecordRepository)(nil)

func (r *normalizedRecordRepository) Insert(ctx context.Context, record *models.NormalizedRecord) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_normalized_records (
			id, raw_record_id, dataset_version_id, payload, normalized_at
		) VALUES ($1, $2, $3, $4, $5)`

	_, err := scope.Conn.Exec(ctx, query,
		record.ID,
		record.RawRecordID,
		record.DatasetVersionID,
		json.RawMessage(record.Payload),
		record.NormalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert normalized record: %w", translatePgError(err))
	}

	return nil
}

func (r *normalizedRecordRepository) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.NormalizedRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, raw_record_id, dataset_version_id, payload, normalized_at
		FROM ledger_normalized_records
		WHERE dataset_version_id = $1
		ORDER BY normalized_at, id`

	rows, err := scope.Conn.Query(ctx, query, datasetVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query normalized records: %w", err)
	}
	defer rows.Close()

	var records []*models.NormalizedRecord
	for rows.Next() {
		record := &models.NormalizedRecord{}
		var payload []byte
		if err := rows.Scan(
			&record.ID,
			&record.RawRecordID,
			&record.DatasetVersionID,
			&payload,
			&record.NormalizedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan normalized record: %w", err)
		}
		record.Payload, err = models.NewPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize normalized payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate normalized records: %w", err)
	}

	return records, nil
}
