package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/services"
)

// RecordHandler exposes raw record ingestion and the read surface for raw
// and normalized records.
type RecordHandler struct {
	records services.RecordService
	logger  *zap.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(records services.RecordService, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger.Named("record-handler")}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *RecordHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/dataset-versions/{dvid}/raw-records", scope(h.Ingest))
	mux.HandleFunc("GET /api/dataset-versions/{dvid}/raw-records", scope(h.ListRaw))
	mux.HandleFunc("GET /api/dataset-versions/{dvid}/normalized-records", scope(h.ListNormalized))
}

type ingestRawRecordRequest struct {
	SourceKey string         `json:"source_key"`
	Payload   models.Payload `json:"payload"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// Ingest handles POST /api/dataset-versions/{dvid}/raw-records. Re-posting
// an identical record is an idempotent success; divergent re-posting under
// the same source key is a 409.
func (h *RecordHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req ingestRawRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if req.SourceKey == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "source_key is required")
		return
	}
	if len(req.Payload) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "payload is required")
		return
	}

	// The ledger never reads the clock; the HTTP boundary supplies the
	// timestamp when the caller omits it.
	createdAt := time.Now().UTC()
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}

	record, err := h.records.IngestRawRecord(r.Context(), services.IngestRawRecordInput{
		DatasetVersionID: datasetVersionID,
		SourceKey:        req.SourceKey,
		Payload:          req.Payload,
		CreatedAt:        createdAt,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to encode raw record", zap.Error(err))
	}
}

// ListRaw handles GET /api/dataset-versions/{dvid}/raw-records.
func (h *RecordHandler) ListRaw(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	records, err := h.records.ListRawRecords(r.Context(), datasetVersionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"raw_records": records}); err != nil {
		h.logger.Error("Failed to encode raw records", zap.Error(err))
	}
}

// ListNormalized handles GET /api/dataset-versions/{dvid}/normalized-records.
func (h *RecordHandler) ListNormalized(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	records, err := h.records.ListNormalizedRecords(r.Context(), datasetVersionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"normalized_records": records}); err != nil {
		h.logger.Error("Failed to encode normalized records", zap.Error(err))
	}
}
