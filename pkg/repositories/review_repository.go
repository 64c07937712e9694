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

// ReviewRepository provides data access for review items and their
// append-only event logs. Events are never updated or deleted; the only
// mutable column in the whole ledger is the item's state, which advances
// through the state machine in models.
type ReviewRepository interface {
	// EnsureItem inserts the unreviewed item for a finding if none exists
	// and returns the stored item either way.
	EnsureItem(ctx context.Context, item *models.ReviewItem) (*models.ReviewItem, error)
	GetItemByFinding(ctx context.Context, findingID uuid.UUID) (*models.ReviewItem, error)
	UpdateItemState(ctx context.Context, itemID uuid.UUID, state models.ReviewState) error
	InsertEvent(ctx context.Context, event *models.ReviewEvent) error
	ListEvents(ctx context.Context, itemID uuid.UUID) ([]*models.ReviewEvent, error)
}

type reviewRepository struct{}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

var _ ReviewRepository = (*reviewRepository)(nil)

func (r *reviewRepository) EnsureItem(ctx context.Context, item *models.ReviewItem) (*models.ReviewItem, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_review_items (id, finding_id, state, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (finding_id) DO NOTHING`

	_, err := scope.Conn.Exec(ctx, query, item.ID, item.FindingID, item.State, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure review item: %w", translatePgError(err))
	}

	// Read back: either our insert or the pre-existing row.
	return r.GetItemByFinding(ctx, item.FindingID)
}

func (r *reviewRepository) GetItemByFinding(ctx context.Context, findingID uuid.UUID) (*models.ReviewItem, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, finding_id, state, created_at
		FROM ledger_review_items
		WHERE finding_id = $1`

	item := &models.ReviewItem{}
	err := scope.Conn.QueryRow(ctx, query, findingID).Scan(&item.ID, &item.FindingID, &item.State, &item.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review item: %w", err)
	}

	return item, nil
}

func (r *reviewRepository) UpdateItemState(ctx context.Context, itemID uuid.UUID, state models.ReviewState) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `UPDATE ledger_review_items SET state = $2 WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, itemID, state)
	if err != nil {
		return fmt.Errorf("failed to update review state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *reviewRepository) InsertEvent(ctx context.Context, event *models.ReviewEvent) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO ledger_review_events (id, review_item_id, kind, actor, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := scope.Conn.Exec(ctx, query,
		event.ID,
		event.ReviewItemID,
		event.Kind,
		event.Actor,
		event.Note,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review event: %w", translatePgError(err))
	}

	return nil
}

func (r *reviewRepository) ListEvents(ctx context.Context, itemID uuid.UUID) ([]*models.ReviewEvent, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, review_item_id, kind, actor, note, created_at
		FROM ledger_review_events
		WHERE review_item_id = $1
		ORDER BY created_at, id`

	rows, err := scope.Conn.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query review events: %w", err)
	}
	defer rows.Close()

	var events []*models.ReviewEvent
	for rows.Next() {
		event := &models.ReviewEvent{}
		if err := rows.Scan(&event.ID, &event.ReviewItemID, &event.Kind, &event.Actor, &event.Note, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review events: %w", err)
	}

	return events, nil
}
