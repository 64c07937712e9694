package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/repositories"
)

// ReviewService layers human disposition tracking over findings. It is
// strictly additive: the ledger rows underneath are never touched, prior
// events are never rewritten, and the history is a complete replayable log.
// Review rows are workflow state, not ledger facts, so their timestamps come
// from the wall clock here rather than from callers.
type ReviewService interface {
	// EnsureDefaultReviewState idempotently creates the unreviewed item for
	// a finding. A finding that does not exist cannot be reviewed.
	EnsureDefaultReviewState(ctx context.Context, findingID uuid.UUID) (*models.ReviewItem, error)
	// AppendEvent validates the transition, appends the event, and advances
	// the item's state for disposition events.
	AppendEvent(ctx context.Context, findingID uuid.UUID, kind models.ReviewEventKind, actor, note string) (*models.ReviewEvent, error)
	History(ctx context.Context, findingID uuid.UUID) (*models.ReviewHistory, error)
}

type reviewService struct {
	findings repositories.FindingRepository
	reviews  repositories.ReviewRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(findings repositories.FindingRepository, reviews repositories.ReviewRepository, logger *zap.Logger) ReviewService {
	return &reviewService{
		findings: findings,
		reviews:  reviews,
		logger:   logger.Named("review-service"),
		now:      time.Now,
	}
}

var _ ReviewService = (*reviewService)(nil)

func (s *reviewService) EnsureDefaultReviewState(ctx context.Context, findingID uuid.UUID) (*models.ReviewItem, error) {
	if _, err := s.findings.GetByID(ctx, findingID); err != nil {
		return nil, fmt.Errorf("resolve finding for review: %w", err)
	}

	item := &models.ReviewItem{
		ID:        uuid.New(),
		FindingID: findingID,
		State:     models.ReviewStateUnreviewed,
		CreatedAt: s.now(),
	}

	stored, err := s.reviews.EnsureItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("ensure default review state: %w", err)
	}
	return stored, nil
}

func (s *reviewService) AppendEvent(ctx context.Context, findingID uuid.UUID, kind models.ReviewEventKind, actor, note string) (*models.ReviewEvent, error) {
	item, err := s.EnsureDefaultReviewState(ctx, findingID)
	if err != nil {
		return nil, err
	}

	next, ok := kind.NextState(item.State)
	if !ok {
		return nil, fmt.Errorf("%w: %s in state %s", apperrors.ErrReviewTransition, kind, item.State)
	}

	event := &models.ReviewEvent{
		ID:           uuid.New(),
		ReviewItemID: item.ID,
		Kind:         kind,
		Actor:        actor,
		Note:         note,
		CreatedAt:    s.now(),
	}

	if err := s.reviews.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append review event: %w", err)
	}

	if kind.IsDisposition() {
		if err := s.reviews.UpdateItemState(ctx, item.ID, next); err != nil {
			return nil, fmt.Errorf("advance review state: %w", err)
		}
		s.logger.Info("Review state advanced",
			zap.String("finding_id", findingID.String()),
			zap.String("state", string(next)),
			zap.String("actor", actor))
	}

	return event, nil
}

func (s *reviewService) History(ctx context.Context, findingID uuid.UUID) (*models.ReviewHistory, error) {
	item, err := s.reviews.GetItemByFinding(ctx, findingID)
	if err != nil {
		return nil, err
	}

	events, err := s.reviews.ListEvents(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	return &models.ReviewHistory{Item: item, Events: events}, nil
}
