package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/models"
	"github.com/evidentia-io/evidentia-ledger/pkg/services"
)

// ReviewHandler exposes the additive review workflow over findings.
type ReviewHandler struct {
	reviews services.ReviewService
	logger  *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews services.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger.Named("review-handler")}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *ReviewHandler) RegisterRoutes(mux *http.ServeMux, scope func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/findings/{fid}/review", scope(h.EnsureReview))
	mux.HandleFunc("POST /api/findings/{fid}/review/events", scope(h.AppendEvent))
	mux.HandleFunc("GET /api/findings/{fid}/review", scope(h.History))
}

// EnsureReview handles POST /api/findings/{fid}/review. Idempotent: repeat
// calls return the existing item.
func (h *ReviewHandler) EnsureReview(w http.ResponseWriter, r *http.Request) {
	findingID, err := uuidParam(r, "fid")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	item, err := h.reviews.EnsureDefaultReviewState(r.Context(), findingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, item); err != nil {
		h.logger.Error("Failed to encode review item", zap.Error(err))
	}
}

type appendReviewEventRequest struct {
	Kind  models.ReviewEventKind `json:"kind"`
	Actor string                 `json:"actor"`
	Note  string                 `json:"note"`
}

// AppendEvent handles POST /api/findings/{fid}/review/events.
func (h *ReviewHandler) AppendEvent(w http.ResponseWriter, r *http.Request) {
	findingID, err := uuidParam(r, "fid")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req appendReviewEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if req.Kind != models.ReviewEventAcknowledged && req.Kind != models.ReviewEventDisputed && req.Kind != models.ReviewEventComment {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "kind must be acknowledged, disputed, or comment")
		return
	}
	if req.Actor == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "actor is required")
		return
	}

	event, err := h.reviews.AppendEvent(r.Context(), findingID, req.Kind, req.Actor, req.Note)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, event); err != nil {
		h.logger.Error("Failed to encode review event", zap.Error(err))
	}
}

// History handles GET /api/findings/{fid}/review.
func (h *ReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	findingID, err := uuidParam(r, "fid")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	history, err := h.reviews.History(r.Context(), findingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, history); err != nil {
		h.logger.Error("Failed to encode review history", zap.Error(err))
	}
}
