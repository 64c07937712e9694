package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Dataset version identity errors. Never defaulted to "latest";
	// there is no such concept.
	ErrDatasetVersionMissing  = errors.New("dataset version id missing")
	ErrDatasetVersionInvalid  = errors.New("dataset version id invalid")
	ErrDatasetVersionNotFound = errors.New("dataset version not found")

	// Prerequisite errors signal a caller bug, not a data problem.
	ErrNormalizedRecordMissing = errors.New("no normalized records for dataset version")
	ErrFindingSourceMissing    = errors.New("finding has no source raw record")
	ErrLinkTargetMissing       = errors.New("link references nonexistent finding or evidence")

	ErrReviewTransition = errors.New("invalid review transition")

	ErrEngineDisabled = errors.New("engine disabled")
	ErrEngineUnknown  = errors.New("unknown engine")
)

// ImmutableConflictError reports reuse of a deterministic identifier with
// content that differs from the stored record. It is always fatal and must
// never be retried with the same arguments.
type ImmutableConflictError struct {
	Entity   string   // "evidence", "finding", "link", "raw_record"
	ID       string   // the colliding identifier
	EngineID string   // producer, empty where not applicable
	Fields   []string // which immutable fields diverged
}

func (e *ImmutableConflictError) Error() string {
	if e.EngineID != "" {
		return fmt.Sprintf("immutable conflict on %s %s (engine %s): fields differ: %s",
			e.Entity, e.ID, e.EngineID, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("immutable conflict on %s %s: fields differ: %s",
		e.Entity, e.ID, strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrConflict) match any immutable conflict.
func (e *ImmutableConflictError) Is(target error) bool {
	return target == ErrConflict
}
