package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/services"
)

// DatasetVersionHandler exposes the registry of immutable root anchors.
// There is deliberately no update or delete route.
type DatasetVersionHandler struct {
	versions services.DatasetVersionService
	logger   *zap.Logger
}

// NewDatasetVersionHandler creates a new DatasetVersionHandler.
func NewDatasetVersionHandler(versions services.DatasetVersionService, logger *zap.Logger) *DatasetVersionHandler {
	return &DatasetVersionHandler{versions: versions, logger: logger.Named("dataset-version-handler")}
}

// RegisterRoutes registers the handler's routes on the given mux. The scope
// middleware pins a database connection for the request.
func (h *DatasetVersionHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/dataset-versions", scope(h.Create))
	mux.HandleFunc("GET /api/dataset-versions", scope(h.List))
	mux.HandleFunc("GET /api/dataset-versions/{dvid}", scope(h.Get))
}

// Create handles POST /api/dataset-versions (ingestion entry point).
func (h *DatasetVersionHandler) Create(w http.ResponseWriter, r *http.Request) {
	version, err := h.versions.Create(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, version); err != nil {
		h.logger.Error("Failed to encode dataset version", zap.Error(err))
	}
}

// List handles GET /api/dataset-versions, ordered by creation.
func (h *DatasetVersionHandler) List(w http.ResponseWriter, r *http.Request) {
	versions, err := h.versions.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"dataset_versions": versions}); err != nil {
		h.logger.Error("Failed to encode dataset versions", zap.Error(err))
	}
}

// Get handles GET /api/dataset-versions/{dvid}.
func (h *DatasetVersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := datasetVersionParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	version, err := h.versions.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, version); err != nil {
		h.logger.Error("Failed to encode dataset version", zap.Error(err))
	}
}
