package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/database"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

// DatasetVersionRepository provides data access for the immutable root
// anchors. There is no update or delete; the table only ever grows.
type DatasetVersionRepository interface {
	Create(ctx context.Context, version *models.DatasetVersion) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetVersion, error)
	List(ctx context.Context) ([]*models.DatasetVersion, error)
}

type datasetVersionRepository struct{}

// NewDatasetVersionRepository creates a new DatasetVersionRepository.
func NewDatasetVersionRepository() DatasetVersionRepository {
	return &datasetVersionRepository{}
}

var _ DatasetVersionRepository = (*datasetVersionRepository)(nil)

func (r *datasetVersionRepository) Create(ctx context.Context, version *models.DatasetVersion) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_dataset_versions (id)
		VALUES ($1)
		RETURNING created_at`

	err := scope.Conn.QueryRow(ctx, query, version.ID).Scan(&version.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dataset version: %w", translatePgError(err))
	}

	return nil
}

func (r *datasetVersionRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	query := `SELECT EXISTS (SELECT 1 FROM ledger_dataset_versions WHERE id = $1)`

	var exists bool
	if err := scope.Conn.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check dataset version existence: %w", err)
	}

	return exists, nil
}

func (r *datasetVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetVersion, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT id, created_at FROM ledger_dataset_versions WHERE id = $1`

	version := &models.DatasetVersion{}
	err := scope.Conn.QueryRow(ctx, query, id).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrDatasetVersionNotFound
		}
		return nil, fmt.Errorf("failed to get dataset version: %w", err)
	}

	return version, nil
}

func (r *datasetVersionRepository) List(ctx context.Context) ([]*models.DatasetVersion, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	// UUIDv7 ids are time-sortable, so ordering by id is creation order.
	query := `SELECT id, created_at FROM ledger_dataset_versions ORDER BY id`

	rows, err := scope.Conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.DatasetVersion
	for rows.Next() {
		version := &models.DatasetVersion{}
		if err := rows.Scan(&version.ID, &version.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dataset versions: %w", err)
	}

	return versions, nil
}
