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

// FindingRepository provides data access for the finding ledger.
type FindingRepository interface {
	Insert(ctx context.Context, record *models.FindingRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FindingRecord, error)
	ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingRecord, error)
	// ListWithContext is the traceability query: findings joined with their
	// source record key and linked evidence ids.
	ListWithContext(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingWithContext, error)
}

type findingRepository struct{}

// NewFindingRepository creates a new FindingRepository.
func NewFindingRepository() FindingRepository {
	return &findingRepository{}
}

var _ FindingRepository = (*findingRepository)(nil)

func (r *findingRepository) Insert(ctx context.Context, record *models.FindingRecord) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_finding_records (
			id, dataset_version_id, raw_record_id, kind, payload, payload_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		record.ID,
		record.DatasetVersionID,
		record.RawRecordID,
		record.Kind,
		json.RawMessage(record.Payload),
		record.PayloadFingerprint,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert finding record: %w", translatePgError(err))
	}

	return nil
}

func (r *findingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FindingRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, dataset_version_id, raw_record_id, kind, payload, payload_fingerprint, created_at
		FROM ledger_finding_records
		WHERE id = $1`

	record, err := scanFindingRecord(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get finding record: %w", err)
	}

	return record, nil
}

func (r *findingRepository) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, dataset_version_id, raw_record_id, kind, payload, payload_fingerprint, created_at
		FROM ledger_finding_records
		WHERE dataset_version_id = $1
		ORDER BY kind, id`

	rows, err := scope.Conn.Query(ctx, query, datasetVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query finding records: %w", err)
	}
	defer rows.Close()

	var records []*models.FindingRecord
	for rows.Next() {
		record, err := scanFindingRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finding records: %w", err)
	}

	return records, nil
}

func (r *findingRepository) ListWithContext(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingWithContext, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT f.id, f.dataset_version_id, f.raw_record_id, f.kind, f.payload,
		       f.payload_fingerprint, f.created_at, r.source_key,
		       COALESCE(array_agg(l.evidence_id ORDER BY l.evidence_id)
		                FILTER (WHERE l.evidence_id IS NOT NULL), '{}')
		FROM ledger_finding_records f
		JOIN ledger_raw_records r ON r.id = f.raw_record_id
		LEFT JOIN ledger_finding_evidence_links l ON l.finding_id = f.id
		WHERE f.dataset_version_id = $1
		GROUP BY f.id, f.dataset_version_id, f.raw_record_id, f.kind, f.payload,
		         f.payload_fingerprint, f.created_at, r.source_key
		ORDER BY f.kind, f.id`

	rows, err := scope.Conn.Query(ctx, query, datasetVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings with context: %w", err)
	}
	defer rows.Close()

	var results []*models.FindingWithContext
	for rows.Next() {
		record := &models.FindingRecord{}
		item := &models.FindingWithContext{Finding: record}
		var payload []byte
		if err := rows.Scan(
			&record.ID,
			&record.DatasetVersionID,
			&record.RawRecordID,
			&record.Kind,
			&payload,
			&record.PayloadFingerprint,
			&record.CreatedAt,
			&item.SourceKey,
			&item.EvidenceIDs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan finding context: %w", err)
		}
		record.Payload, err = models.NewPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize finding payload: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finding contexts: %w", err)
	}

	return results, nil
}

func scanFindingRecord(row pgx.Row) (*models.FindingRecord, error) {
	record := &models.FindingRecord{}
	var payload []byte
	err := row.Scan(
		&record.ID,
		&record.DatasetVersionID,
		&record.RawRecordID,
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
