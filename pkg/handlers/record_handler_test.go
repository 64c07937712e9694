package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecordMux(records *mockRecordService) *http.ServeMux {
	mux := http.NewServeMux()
	NewRecordHandler(records, zap.NewNop()).RegisterRoutes(mux, noScope)
	return mux
}

func TestIngestRawRecord(t *testing.T) {
	records := &mockRecordService{}
	mux := newRecordMux(records)
	dvid := uuid.New()

	rec := postJSON(t, mux, "/api/dataset-versions/"+dvid.String()+"/raw-records", map[string]any{
		"source_key": "invoices/2026-01.csv#row-17",
		"payload":    map[string]any{"amount": "19.90", "currency": "EUR"},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, records.ingested, 1)
	assert.Equal(t, "invoices/2026-01.csv#row-17", records.ingested[0].SourceKey)
	assert.False(t, records.ingested[0].CreatedAt.IsZero(), "boundary must default the timestamp")
}

func TestIngestRawRecordHonorsCallerTimestamp(t *testing.T) {
	records := &mockRecordService{}
	mux := newRecordMux(records)
	dvid := uuid.New()
	suppliedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := postJSON(t, mux, "/api/dataset-versions/"+dvid.String()+"/raw-records", map[string]any{
		"source_key": "k",
		"payload":    map[string]any{"a": 1},
		"created_at": suppliedAt,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, records.ingested, 1)
	assert.True(t, records.ingested[0].CreatedAt.Equal(suppliedAt))
}

func TestIngestRawRecordRequiresSourceKey(t *testing.T) {
	mux := newRecordMux(&mockRecordService{})

	rec := postJSON(t, mux, "/api/dataset-versions/"+uuid.NewString()+"/raw-records", map[string]any{
		"payload": map[string]any{"a": 1},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestRawRecordRejectsInvalidBody(t *testing.T) {
	mux := newRecordMux(&mockRecordService{})

	req := httptest.NewRequest(http.MethodPost, "/api/dataset-versions/"+uuid.NewString()+"/raw-records",
		strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRawRecords(t *testing.T) {
	records := &mockRecordService{}
	mux := newRecordMux(records)

	req := httptest.NewRequest(http.MethodGet, "/api/dataset-versions/"+uuid.NewString()+"/raw-records", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "raw_records")
}
