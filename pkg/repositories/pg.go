package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translatePgError maps Postgres constraint violations onto the ledger error
// taxonomy. Unique violations surface as ErrConflict so the guard can re-read
// and compare after losing an insert race; foreign key violations name the
// missing prerequisite by constraint.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperrors.ErrConflict
	case pgForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "fk_raw_records_dataset_version",
			"fk_normalized_records_dataset_version",
			"fk_evidence_dataset_version",
			"fk_findings_dataset_version":
			return apperrors.ErrDatasetVersionNotFound
		case "fk_findings_raw_record":
			return apperrors.ErrFindingSourceMissing
		case "fk_links_finding", "fk_links_evidence":
			return apperrors.ErrLinkTargetMissing
		default:
			return apperrors.ErrNotFound
		}
	}
	return err
}
