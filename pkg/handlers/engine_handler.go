package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/engines"
)

// EngineHandler runs registered engines under the execution contract.
type EngineHandler struct {
	runner  *engines.Runner
	engines map[string]engines.Engine
	logger  *zap.Logger
}

// NewEngineHandler creates a new EngineHandler over the registered engines.
func NewEngineHandler(runner *engines.Runner, registered []engines.Engine, logger *zap.Logger) *EngineHandler {
	byID := make(map[string]engines.Engine, len(registered))
	for _, engine := range registered {
		byID[engine.ID()] = engine
	}
	return &EngineHandler{runner: runner, engines: byID, logger: logger.Named("engine-handler")}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *EngineHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/engines/{engine}/run", scope(h.Run))
}

type runEngineRequest struct {
	DatasetVersionID string `json:"dataset_version_id"`
}

// Run handles POST /api/engines/{engine}/run.
func (h *EngineHandler) Run(w http.ResponseWriter, r *http.Request) {
	engineID := r.PathValue("engine")
	engine, ok := h.engines[engineID]
	if !ok {
		respondError(w, h.logger, fmt.Errorf("%w: %q", apperrors.ErrEngineUnknown, engineID))
		return
	}

	var req runEngineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}

	response, err := h.runner.Run(r.Context(), engine, engines.RunRequest{
		DatasetVersionID: req.DatasetVersionID,
		StartedAt:        time.Now().UTC(),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode engine run response", zap.Error(err))
	}
}
