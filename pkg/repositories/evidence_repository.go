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

// EvidenceRepository provides data access for the content-addressed evidence
// ledger. Insert-only; conflict detection lives in the immutability guard.
type EvidenceRepository interface {
	Insert(ctx context.Context, record *models.EvidenceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceRecord, error)
	ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.EvidenceRecord, error)
}

type evidenceRepository struct{}

// NewEvidenceRepository creates a new EvidenceRepository.
func NewEvidenceRepository() EvidenceRepository {
	return &evidenceRepository{}
}

var _ EvidenceRepository = (*evidenceRepository)(nil)

func (r *evidenceRepository) Insert(ctx context.Context, record *models.EvidenceRecord) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_evidence_records (
			id, dataset_version_id, engine_id, kind, payload, payload_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		record.ID,
		record.DatasetVersionID,
		record.EngineID,
		record.Kind,
		json.RawMessage(record.Payload),
		record.PayloadFingerprint,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evidence record: %w", translatePgError(err))
	}

	return nil
}

func (r *evidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, dataset_version_id, engine_id, kind, payload, payload_fingerprint, created_at
		FROM ledger_evidence_records
		WHERE id = $1`

	record, err := scanEvidenceRecord(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get evidence record: %w", err)
	}

	return record, nil
}

func (r *evidenceRepository) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.EvidenceRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, dataset_version_id, engine_id, kind, payload, payload_fingerprint, created_at
		FROM ledger_evidence_records
		WHERE dataset_version_id = $1
		ORDER BY engine_id, kind, id`

	rows, err := scope.Conn.Query(ctx, query, datasetVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence records: %w", err)
	}
	defer rows.Close()

	var records []*models.EvidenceRecord
	for rows.Next() {
		record, err := scanEvidenceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evidence record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate evidence records: %w", err)
	}

	return records, nil
}

func scanEvidenceRecord(row pgx.Row) (*models.EvidenceRecord, error) {
	record := &models.EvidenceRecord{}
	var payload []byte
	err := row.Scan(
		&record.ID,
		&record.DatasetVersionID,
		&record.EngineID,
		&record.Kind,
		&payload,
		&record.PayloadFingerprint,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Payload, err = models.NewPayload(payload)
	if err != nil {
		return nil, err
	}
	return record, nil
}
