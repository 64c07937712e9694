package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/services"
)

// LedgerHandler exposes the evidence/finding/link write surface and the
// traceability read queries. All writes are idempotent; identifier reuse
// with divergent content is a 409.
type LedgerHandler struct {
	ledger services.LedgerService
	logger *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger services.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, logger: logger.Named("ledger-handler")}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *LedgerHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/dataset-versions/{dvid}/evidence", scope(h.CreateEvidence))
	mux.HandleFunc("GET /api/dataset-versions/{dvid}/evidence", scope(h.ListEvidence))
	mux.HandleFunc("POST /api/dataset-versions/{dvid}/findings", scope(h.CreateFinding))
	mux.HandleFunc("GET /api/dataset-versions/{dvid}/findings", scope(h.ListFindings))
	mux.HandleFunc("POST /api/finding-evidence-links", scope(h.CreateLink))
}

type createEvidenceRequest struct {
	EngineID  string         `json:"engine_id"`
	Kind      string         `json:"kind"`
	StableKey string         `json:"stable_key"`
	Payload   models.Payload `json:"payload"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// CreateEvidence handles POST /api/dataset-versions/{dvid}/evidence.
func (h *LedgerHandler) CreateEvidence(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createEvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if req.EngineID == "" || req.Kind == "" || req.StableKey == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "engine_id, kind, and stable_key are required")
		return
	}
	if len(req.Payload) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "payload is required")
		return
	}

	record, err := h.ledger.CreateEvidence(r.Context(), services.CreateEvidenceInput{
		DatasetVersionID: datasetVersionID,
		EngineID:         req.EngineID,
		Kind:             req.Kind,
		StableKey:        req.StableKey,
		Payload:          req.Payload,
		CreatedAt:        timestampOrNow(req.CreatedAt),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to encode evidence record", zap.Error(err))
	}
}

// ListEvidence handles GET /api/dataset-versions/{dvid}/evidence.
func (h *LedgerHandler) ListEvidence(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	records, err := h.ledger.ListEvidence(r.Context(), datasetVersionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"evidence": records}); err != nil {
		h.logger.Error("Failed to encode evidence records", zap.Error(err))
	}
}

type createFindingRequest struct {
	RawRecordID uuid.UUID      `json:"raw_record_id"`
	Kind        string         `json:"kind"`
	StableKey   string         `json:"stable_key"`
	Payload     models.Payload `json:"payload"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
}

// CreateFinding handles POST /api/dataset-versions/{dvid}/findings.
func (h *LedgerHandler) CreateFinding(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createFindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if req.Kind == "" || req.StableKey == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "kind and stable_key are required")
		return
	}
	if len(req.Payload) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "payload is required")
		return
	}

	record, err := h.ledger.CreateFinding(r.Context(), services.CreateFindingInput{
		DatasetVersionID: datasetVersionID,
		RawRecordID:      req.RawRecordID,
		Kind:             req.Kind,
		StableKey:        req.StableKey,
		Payload:          req.Payload,
		CreatedAt:        timestampOrNow(req.CreatedAt),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to encode finding record", zap.Error(err))
	}
}

// ListFindings handles GET /api/dataset-versions/{dvid}/findings: the
// traceability query resolving each finding to its source record and linked
// evidence.
func (h *LedgerHandler) ListFindings(w http.ResponseWriter, r *http.Request) {
	datasetVersionID, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	findings, err := h.ledger.ListFindings(r.Context(), datasetVersionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"findings": findings}); err != nil {
		h.logger.Error("Failed to encode findings", zap.Error(err))
	}
}

type createLinkRequest struct {
	FindingID  uuid.UUID  `json:"finding_id"`
	EvidenceID uuid.UUID  `json:"evidence_id"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// CreateLink handles POST /api/finding-evidence-links.
func (h *LedgerHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if req.FindingID == uuid.Nil || req.EvidenceID == uuid.Nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "finding_id and evidence_id are required")
		return
	}

	link, err := h.ledger.CreateLink(r.Context(), services.CreateLinkInput{
		FindingID:  req.FindingID,
		EvidenceID: req.EvidenceID,
		CreatedAt:  timestampOrNow(req.CreatedAt),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, link); err != nil {
		h.logger.Error("Failed to encode finding-evidence link", zap.Error(err))
	}
}

func timestampOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}
