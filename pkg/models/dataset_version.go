package models

import (
	"time"

	"github.com/google/uuid"
)

// DatasetVersion is the immutable root anchoring one ingested snapshot of
// data. It is created exactly once by the ingestion path and never updated
// or deleted; every other ledger entity carries a mandatory reference to
// exactly one DatasetVersion.
type DatasetVersion struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
