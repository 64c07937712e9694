package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockDatasetVersionRepo struct {
	versions  map[uuid.UUID]*models.DatasetVersion
	createErr error
	existsErr error
}

func newMockDatasetVersionRepo() *mockDatasetVersionRepo {
	return &mockDatasetVersionRepo{versions: make(map[uuid.UUID]*models.DatasetVersion)}
}

func (m *mockDatasetVersionRepo) Create(ctx context.Context, version *models.DatasetVersion) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.versions[version.ID] = version
	return nil
}

func (m *mockDatasetVersionRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.versions[id]
	return ok, nil
}

func (m *mockDatasetVersionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetVersion, error) {
	version, ok := m.versions[id]
	if !ok {
		return nil, apperrors.ErrDatasetVersionNotFound
	}
	return version, nil
}

func (m *mockDatasetVersionRepo) List(ctx context.Context) ([]*models.DatasetVersion, error) {
	var versions []*models.DatasetVersion
	for _, v := range m.versions {
		versions = append(versions, v)
	}
	return versions, nil
}

type mockRawRecordRepo struct {
	records     map[uuid.UUID]*models.RawRecord
	insertErr   error
	insertCalls int
}

func newMockRawRecordRepo() *mockRawRecordRepo {
	return &mockRawRecordRepo{records: make(map[uuid.UUID]*models.RawRecord)}
}

func (m *mockRawRecordRepo) Insert(ctx context.Context, record *models.RawRecord) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, exists := m.records[record.ID]; exists {
		return apperrors.ErrConflict
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockRawRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RawRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

func (m *mockRawRecordRepo) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.RawRecord, error) {
	var records []*models.RawRecord
	for _, r := range m.records {
		if r.DatasetVersionID == datasetVersionID {
			records = append(records, r)
		}
	}
	return records, nil
}

type mockNormalizedRecordRepo struct {
	records map[uuid.UUID]*models.NormalizedRecord
}

func newMockNormalizedRecordRepo() *mockNormalizedRecordRepo {
	return &mockNormalizedRecordRepo{records: make(map[uuid.UUID]*models.NormalizedRecord)}
}

func (m *mockNormalizedRecordRepo) Insert(ctx context.Context, record *models.NormalizedRecord) error {
	m.records[record.ID] = record
	return nil
}

func (m *mockNormalizedRecordRepo) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.NormalizedRecord, error) {
	var records []*models.NormalizedRecord
	for _, r := range m.records {
		if r.DatasetVersionID == datasetVersionID {
			records = append(records, r)
		}
	}
	return records, nil
}

type mockEvidenceRepo struct {
	records     map[uuid.UUID]*models.EvidenceRecord
	insertErr   error
	insertCalls int
}

func newMockEvidenceRepo() *mockEvidenceRepo {
	return &mockEvidenceRepo{records: make(map[uuid.UUID]*models.EvidenceRecord)}
}

func (m *mockEvidenceRepo) Insert(ctx context.Context, record *models.EvidenceRecord) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, exists := m.records[record.ID]; exists {
		return apperrors.ErrConflict
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockEvidenceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

func (m *mockEvidenceRepo) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.EvidenceRecord, error) {
	var records []*models.EvidenceRecord
	for _, r := range m.records {
		if r.DatasetVersionID == datasetVersionID {
			records = append(records, r)
		}
	}
	return records, nil
}

type mockFindingRepo struct {
	records     map[uuid.UUID]*models.FindingRecord
	contexts    []*models.FindingWithContext
	insertErr   error
	insertCalls int
}

func newMockFindingRepo() *mockFindingRepo {
	return &mockFindingRepo{records: make(map[uuid.UUID]*models.FindingRecord)}
}

func (m *mockFindingRepo) Insert(ctx context.Context, record *models.FindingRecord) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, exists := m.records[record.ID]; exists {
		return apperrors.ErrConflict
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockFindingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FindingRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

func (m *mockFindingRepo) ListByDatasetVersion(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingRecord, error) {
	var records []*models.FindingRecord
	for _, r := range m.records {
		if r.DatasetVersionID == datasetVersionID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (m *mockFindingRepo) ListWithContext(ctx context.Context, datasetVersionID uuid.UUID) ([]*models.FindingWithContext, error) {
	return m.contexts, nil
}

type mockLinkRepo struct {
	links       map[uuid.UUID]*models.FindingEvidenceLink
	insertErr   error
	insertCalls int
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: make(map[uuid.UUID]*models.FindingEvidenceLink)}
}

func (m *mockLinkRepo) Insert(ctx context.Context, link *models.FindingEvidenceLink) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, exists := m.links[link.ID]; exists {
		return apperrors.ErrConflict
	}
	m.links[link.ID] = link
	return nil
}

func (m *mockLinkRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FindingEvidenceLink, error) {
	link, ok := m.links[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return link, nil
}

func (m *mockLinkRepo) ListByFinding(ctx context.Context, findingID uuid.UUID) ([]*models.FindingEvidenceLink, error) {
	var links []*models.FindingEvidenceLink
	for _, l := range m.links {
		if l.FindingID == findingID {
			links = append(links, l)
		}
	}
	return links, nil
}

type mockReviewRepo struct {
	items  map[uuid.UUID]*models.ReviewItem // keyed by finding id
	events []*models.ReviewEvent
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{items: make(map[uuid.UUID]*models.ReviewItem)}
}

func (m *mockReviewRepo) EnsureItem(ctx context.Context, item *models.ReviewItem) (*models.ReviewItem, error) {
	if existing, ok := m.items[item.FindingID]; ok {
		return existing, nil
	}
	m.items[item.FindingID] = item
	return item, nil
}

func (m *mockReviewRepo) GetItemByFinding(ctx context.Context, findingID uuid.UUID) (*models.ReviewItem, error) {
	item, ok := m.items[findingID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return item, nil
}

func (m *mockReviewRepo) UpdateItemState(ctx context.Context, itemID uuid.UUID, state models.ReviewState) error {
	for _, item := range m.items {
		if item.ID == itemID {
			item.State = state
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockReviewRepo) InsertEvent(ctx context.Context, event *models.ReviewEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockReviewRepo) ListEvents(ctx context.Context, itemID uuid.UUID) ([]*models.ReviewEvent, error) {
	var events []*models.ReviewEvent
	for _, e := range m.events {
		if e.ReviewItemID == itemID {
			events = append(events, e)
		}
	}
	return events, nil
}
