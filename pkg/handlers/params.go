package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
)

// datasetVersionParam extracts and validates the {dvid} path parameter.
// Shape validation happens before any storage access, so malformed ids are
// 400s and never reach the registry.
func datasetVersionParam(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("dvid")
	if raw == "" {
		return uuid.Nil, apperrors.ErrDatasetVersionMissing
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", apperrors.ErrDatasetVersionInvalid, raw)
	}
	return id, nil
}

// uuidParam extracts a generic UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %q: %w", name, raw, apperrors.ErrNotFound)
	}
	return id, nil
}
