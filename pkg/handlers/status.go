package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
)

// statusFor maps the ledger error taxonomy onto HTTP status codes. Every
// engine surface uses the same mapping: malformed version references are
// 400, unknown ones 404, immutability conflicts and missing prerequisites
// 409, disabled engines 503, everything unexpected 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrDatasetVersionMissing):
		return http.StatusBadRequest, "dataset_version_missing"
	case errors.Is(err, apperrors.ErrDatasetVersionInvalid):
		return http.StatusBadRequest, "dataset_version_invalid"
	case errors.Is(err, apperrors.ErrDatasetVersionNotFound):
		return http.StatusNotFound, "dataset_version_not_found"
	case errors.Is(err, apperrors.ErrEngineUnknown):
		return http.StatusNotFound, "engine_unknown"
	case errors.Is(err, apperrors.ErrEngineDisabled):
		return http.StatusServiceUnavailable, "engine_disabled"
	case errors.Is(err, apperrors.ErrFindingSourceMissing):
		return http.StatusConflict, "finding_source_missing"
	case errors.Is(err, apperrors.ErrNormalizedRecordMissing):
		return http.StatusConflict, "normalized_records_missing"
	case errors.Is(err, apperrors.ErrLinkTargetMissing):
		return http.StatusConflict, "link_target_missing"
	case errors.Is(err, apperrors.ErrReviewTransition):
		return http.StatusConflict, "invalid_review_transition"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "immutable_conflict"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError translates an error into the shared JSON error shape.
// Internal errors are logged; taxonomy errors are the caller's problem and
// logged at debug only by the request middleware.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Unhandled error", zap.Error(err))
		_ = ErrorResponse(w, status, code, "internal error")
		return
	}
	_ = ErrorResponse(w, status, code, err.Error())
}
