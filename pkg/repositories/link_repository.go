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

// LinkRepository provides data access for finding-evidence edges. Foreign
// keys reject links to nonexistent findings or evidence.
type LinkRepository interface {
	Insert(ctx context.Context, link *models.FindingEvidenceLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FindingEvidenceLink, error)
	ListByFinding(ctx context.Context, findingID uuid.UUID) ([]*models.FindingEvidenceLink, error)
}

type linkRepository struct{}

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository() LinkRepository {
	return &linkRepository{}
}

var _ LinkRepository = (*linkRepository)(nil)

func (r *linkRepository) Insert(ctx context.Context, link *models.FindingEvidenceLink) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_finding_evidence_links (id, finding_id, evidence_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := scope.Conn.Exec(ctx, query, link.ID, link.FindingID, link.EvidenceID, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert finding-evidence link: %w", translatePgError(err))
	}

	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FindingEvidenceLink, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, finding_id, evidence_id, created_at
		FROM ledger_finding_evidence_links
		WHERE id = $1`

	link := &models.FindingEvidenceLink{}
	err := scope.Conn.QueryRow(ctx, query, id).Scan(&link.ID, &link.FindingID, &link.EvidenceID, &link.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get finding-evidence link: %w", err)
	}

	return link, nil
}

func (r *linkRepository) ListByFinding(ctx context.Context, findingID uuid.UUID) ([]*models.FindingEvidenceLink, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, finding_id, evidence_id, created_at
		FROM ledger_finding_evidence_links
		WHERE finding_id = $1
		ORDER BY evidence_id`

	rows, err := scope.Conn.Query(ctx, query, findingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query finding-evidence links: %w", err)
	}
	defer rows.Close()

	var links []*models.FindingEvidenceLink
	for rows.Next() {
		link := &models.FindingEvidenceLink{}
		if err := rows.Scan(&link.ID, &link.FindingID, &link.EvidenceID, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan finding-evidence link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finding-evidence links: %w", err)
	}

	return links, nil
}
