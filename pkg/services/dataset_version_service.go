package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/identity"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/repositories"
)

// DatasetVersionService is the registry for immutable root anchors. Create
// is used by the ingestion path only; Exists is the precondition every
// downstream write path checks.
type DatasetVersionService interface {
	Create(ctx context.Context) (*models.DatasetVersion, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DatasetVersion, error)
	List(ctx context.Context) ([]*models.DatasetVersion, error)
	// Require is Exists hardened into the error taxonomy: unknown ids fail
	// closed with ErrDatasetVersionNotFound, never defaulted.
	Require(ctx context.Context, id uuid.UUID) error
}

type datasetVersionService struct {
	repo   repositories.DatasetVersionRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewDatasetVersionService creates a new DatasetVersionService. The Redis
// client is optional; pass nil to disable the existence cache.
func NewDatasetVersionService(repo repositories.DatasetVersionRepository, cache *redis.Client, logger *zap.Logger) DatasetVersionService {
	return &datasetVersionService{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("dataset-version-service"),
	}
}

var _ DatasetVersionService = (*datasetVersionService)(nil)

func (s *datasetVersionService) Create(ctx context.Context) (*models.DatasetVersion, error) {
	id, err := identity.NewDatasetVersionID()
	if err != nil {
		return nil, err
	}

	version := &models.DatasetVersion{ID: id}
	if err := s.repo.Create(ctx, version); err != nil {
		return nil, fmt.Errorf("create dataset version: %w", err)
	}

	s.logger.Info("Dataset version created", zap.String("dataset_version_id", id.String()))
	return version, nil
}

func (s *datasetVersionService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	// Versions are never deleted, so a positive answer is cacheable forever.
	// Negative answers are never cached.
	if s.cacheHit(ctx, id) {
		return true, nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check dataset version existence: %w", err)
	}
	if exists {
		s.cacheStore(ctx, id)
	}
	return exists, nil
}

func (s *datasetVersionService) Get(ctx context.Context, id uuid.UUID) (*models.DatasetVersion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *datasetVersionService) List(ctx context.Context) ([]*models.DatasetVersion, error) {
	return s.repo.List(ctx)
}

func (s *datasetVersionService) Require(ctx context.Context, id uuid.UUID) error {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrDatasetVersionNotFound
	}
	return nil
}

func (s *datasetVersionService) cacheHit(ctx context.Context, id uuid.UUID) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Exists(ctx, existsCacheKey(id)).Result()
	if err != nil {
		// Cache trouble never fails the operation; the store decides.
		s.logger.Debug("Existence cache read failed", zap.Error(err))
		return false
	}
	return ok > 0
}

func (s *datasetVersionService) cacheStore(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, existsCacheKey(id), "1", 0).Err(); err != nil {
		s.logger.Debug("Existence cache write failed", zap.Error(err))
	}
}

func existsCacheKey(id uuid.UUID) string {
	return "ledger:dataset-version:exists:" + id.String()
}
