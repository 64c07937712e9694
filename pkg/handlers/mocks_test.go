package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/services"
)

var (
	_ services.DatasetVersionService = (*mockDatasetVersionService)(nil)
	_ services.RecordService         = (*mockRecordService)(nil)
	_ services.LedgerService         = (*mockLedgerService)(nil)
	_ services.ReviewService         = (*mockReviewService)(nil)
)

type mockDatasetVersionService struct {
	versions  map[uuid.UUID]*models.DatasetVersion
	createErr error
}

func newMockDatasetVersionService() *mockDatasetVersionService {
	return &mockDatasetVersionService{versions: make(map[uuid.UUID]*models.DatasetVersion)}
}

func (m *mockDatasetVersionService) Create(ctx context.Context) (*models.DatasetVersion, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	id := uuid.New()
	version := &models.DatasetVersion{ID: id}
	m.versions[id] = version
	return version, nil
}

func (m *mockDatasetVersionService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.versions[id]
	return ok, nil
}

func (m *mockDatasetVersionService) Get(ctx context.Context, id uuid.UUID) (*models.DatasetVersion, error) {
	version, ok := m.versions[id]
	if !ok {
		return nil, apperrors.ErrDatasetVersionNotFound
	}
	return version, nil
}

func (m *mockDatasetVersionService) List(ctx context.Context) ([]*models.DatasetVersion, error) {
	out := make([]*models.DatasetVersion, 0, len(m.versions))
	for _, v := range m.versions {
		out = append(out, v)
	}
	return out, nil
}

func (m *mockDatasetVersionService) Require(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.versions[id]; !ok {
		return apperrors.ErrDatasetVersionNotFound
	}
	return nil
}

type mockRecordService struct {
	ingestErr  error
	ingested   []*models.RawRecord
	raw        []*models.RawRecord
	normalized []*models.NormalizedRecord
	listErr    error
}

func (m *mockRecordService) IngestRawRecord(ctx context.Context, input services.IngestRawRecordInput) (*models.RawRecord, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	record := &models.RawRecord{
		ID:               uuid.New(),
		DatasetVersionID: input.DatasetVersionID,
		SourceKey:        input.SourceKey,
		Payload:          input.Payload,
		CreatedAt:        input.CreatedAt,
	}
	m.ingested = append(m.ingested, record)
	return record, nil
}

func (m *mockRecordService) ListRawRecords(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.RawRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.raw, nil
}

func (m *mockRecordService) ListNormalizedRecords(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.NormalizedRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.normalized, nil
}

type mockLedgerService struct {
	createEvidenceErr error
	createFindingErr  error
	createLinkErr     error
	evidence          []*models.EvidenceRecord
	findings          []*models.FindingWithContext
	listErr           error
}

func (m *mockLedgerService) CreateEvidence(ctx context.Context, input services.CreateEvidenceInput) (*models.EvidenceRecord, error) {
	if m.createEvidenceErr != nil {
		return nil, m.createEvidenceErr
	}
	return &models.EvidenceRecord{
		ID:               uuid.New(),
		DatasetVersionID: input.DatasetVersionID,
		EngineID:         input.EngineID,
		Kind:             input.Kind,
		Payload:          input.Payload,
		CreatedAt:        input.CreatedAt,
	}, nil
}

func (m *mockLedgerService) CreateFinding(ctx context.Context, input services.CreateFindingInput) (*models.FindingRecord, error) {
	if m.createFindingErr != nil {
		return nil, m.createFindingErr
	}
	return &models.FindingRecord{
		ID:               uuid.New(),
		DatasetVersionID: input.DatasetVersionID,
		RawRecordID:      input.RawRecordID,
		Kind:             input.Kind,
		Payload:          input.Payload,
		CreatedAt:        input.CreatedAt,
	}, nil
}

func (m *mockLedgerService) CreateLink(ctx context.Context, input services.CreateLinkInput) (*models.FindingEvidenceLink, error) {
	if m.createLinkErr != nil {
		return nil, m.createLinkErr
	}
	return &models.FindingEvidenceLink{
		ID:         uuid.New(),
		FindingID:  input.FindingID,
		EvidenceID: input.EvidenceID,
		CreatedAt:  input.CreatedAt,
	}, nil
}

func (m *mockLedgerService) ListEvidence(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.EvidenceRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.evidence, nil
}

func (m *mockLedgerService) ListFindings(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingWithContext, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.findings, nil
}

type mockReviewService struct {
	items     map[uuid.UUID]*models.ReviewItem
	events    []*models.ReviewEvent
	ensureErr error
	appendErr error
}

func newMockReviewService() *mockReviewService {
	return &mockReviewService{items: make(map[uuid.UUID]*models.ReviewItem)}
}

func (m *mockReviewService) EnsureDefaultReviewState(ctx context.Context, findingID uuid.UUID) (*models.ReviewItem, error) {
	if m.ensureErr != nil {
		return nil, m.ensureErr
	}
	if item, ok := m.items[findingID]; ok {
		return item, nil
	}
	item := &models.ReviewItem{ID: uuid.New(), FindingID: findingID, State: models.ReviewStateUnreviewed}
	m.items[findingID] = item
	return item, nil
}

func (m *mockReviewService) AppendEvent(ctx context.Context, findingID uuid.UUID, kind models.ReviewEventKind, actor, note string) (*models.ReviewEvent, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	item, err := m.EnsureDefaultReviewState(ctx, findingID)
	if err != nil {
		return nil, err
	}
	event := &models.ReviewEvent{ID: uuid.New(), ReviewItemID: item.ID, Kind: kind, Actor: actor, Note: note}
	m.events = append(m.events, event)
	return event, nil
}

func (m *mockReviewService) History(ctx context.Context, findingID uuid.UUID) (*models.ReviewHistory, error) {
	item, ok := m.items[findingID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &models.ReviewHistory{Item: item, Events: m.events}, nil
}
