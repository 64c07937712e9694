package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/identity"
	"github.com/evidentia-io/evidentia-ledger/pkg/models"
)

func newRecordFixture() (*mockDatasetVersionRepo, *guardFixture, RecordService) {
	versionRepo := newMockDatasetVersionRepo()
	versionService := NewDatasetVersionService(versionRepo, nil, zap.NewNop())
	guard := newGuardFixture()
	service := NewRecordService(versionService, guard.guard, guard.rawRecords, newMockNormalizedRecordRepo(), zap.NewNop())
	return versionRepo, guard, service
}

func TestIngestRawRecordIsReplayStable(t *testing.T) {
	versionRepo, guard, service := newRecordFixture()
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	versionRepo.versions[dv] = &models.DatasetVersion{ID: dv}
	ctx := context.Background()

	input := IngestRawRecordInput{
		DatasetVersionID: dv,
		SourceKey:        "invoices.csv:7",
		Payload:          models.MustPayload(`{"amount":120.00,"currency":"EUR"}`),
		CreatedAt:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	first, err := service.IngestRawRecord(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, identity.RawRecordID(dv, "invoices.csv:7"), first.ID)

	second, err := service.IngestRawRecord(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, guard.rawRecords.insertCalls)
}

func TestIngestRawRecordDivergentPayloadConflicts(t *testing.T) {
	versionRepo, _, service := newRecordFixture()
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	versionRepo.versions[dv] = &models.DatasetVersion{ID: dv}
	ctx := context.Background()

	_, err := service.IngestRawRecord(ctx, IngestRawRecordInput{
		DatasetVersionID: dv,
		SourceKey:        "invoices.csv:7",
		Payload:          models.MustPayload(`{"amount":120}`),
	})
	require.NoError(t, err)

	_, err = service.IngestRawRecord(ctx, IngestRawRecordInput{
		DatasetVersionID: dv,
		SourceKey:        "invoices.csv:7",
		Payload:          models.MustPayload(`{"amount":999}`),
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestIngestRawRecordUnknownVersionFailsClosed(t *testing.T) {
	_, guard, service := newRecordFixture()

	_, err := service.IngestRawRecord(context.Background(), IngestRawRecordInput{
		DatasetVersionID: uuid.New(),
		SourceKey:        "invoices.csv:7",
		Payload:          models.MustPayload(`{"amount":120}`),
	})

	assert.ErrorIs(t, err, apperrors.ErrDatasetVersionNotFound)
	assert.Zero(t, guard.rawRecords.insertCalls)
}

func TestIngestRawRecordRequiresSourceKey(t *testing.T) {
	versionRepo, _, service := newRecordFixture()
	dv := uuid.MustParse("01912d68-7a4e-7c3a-9f21-000000000001")
	versionRepo.versions[dv] = &models.DatasetVersion{ID: dv}

	_, err := service.IngestRawRecord(context.Background(), IngestRawRecordInput{
		DatasetVersionID: dv,
		Payload:          models.MustPayload(`{"amount":120}`),
	})
	assert.Error(t, err)
}
