package engines

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evidentia-io/evidentia-ledger/pkg/apperrors"
	"github.com/evidentia-io/evidentia-ledger/pkg/services"
)

// RunRequest is one engine invocation. DatasetVersionID arrives as a string
// because validation of its shape is part of the contract, not the caller's
// job. StartedAt stamps every record the run creates; the ledger itself
// never reads the clock.
type RunRequest struct {
	DatasetVersionID string
	StartedAt        time.Time
}

// RunResponse echoes the dataset version and the identifiers the run
// created. Because all ids are deterministic, re-running the same engine on
// the same version returns the same sets.
type RunResponse struct {
	DatasetVersionID uuid.UUID   `json:"dataset_version_id"`
	EngineID         string      `json:"engine_id"`
	EvidenceIDs      []uuid.UUID `json:"evidence_ids"`
	FindingIDs       []uuid.UUID `json:"finding_ids"`
	LinkIDs          []uuid.UUID `json:"link_ids"`
}

// Runner executes the fixed engine contract phase order: gate check,
// validate, confirm existence, load records, analyze, persist through the
// guard, echo identifiers. Engines plug in at phase 4 and never touch
// storage directly.
type Runner struct {
	gate     Gate
	versions services.DatasetVersionService
	records  services.RecordService
	ledger   services.LedgerService
	logger   *zap.Logger
}

// NewRunner creates a Runner over the ledger service layer.
func NewRunner(
	gate Gate,
	versions services.DatasetVersionService,
	records services.RecordService,
	ledger services.LedgerService,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		gate:     gate,
		versions: versions,
		records:  records,
		ledger:   ledger,
		logger:   logger.Named("engine-runner"),
	}
}

// Run executes one engine against one dataset version.
func (r *Runner) Run(ctx context.Context, engine Engine, req RunRequest) (*RunResponse, error) {
	if !r.gate.Enabled(engine.ID()) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEngineDisabled, engine.ID())
	}

	if req.DatasetVersionID == "" {
		return nil, apperrors.ErrDatasetVersionMissing
	}
	datasetVersionID, err := uuid.Parse(req.DatasetVersionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrDatasetVersionInvalid, req.DatasetVersionID)
	}

	if err := r.versions.Require(ctx, datasetVersionID); err != nil {
		return nil, err
	}
	version, err := r.versions.Get(ctx, datasetVersionID)
	if err != nil {
		return nil, err
	}

	rawRecords, err := r.records.ListRawRecords(ctx, datasetVersionID)
	if err != nil {
		return nil, err
	}
	normalizedRecords, err := r.records.ListNormalizedRecords(ctx, datasetVersionID)
	if err != nil {
		return nil, err
	}
	if len(normalizedRecords) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNormalizedRecordMissing, datasetVersionID)
	}

	results, err := engine.Analyze(ctx, &AnalysisInput{
		DatasetVersion:    version,
		RawRecords:        rawRecords,
		NormalizedRecords: normalizedRecords,
	})
	if err != nil {
		return nil, fmt.Errorf("engine %s analyze: %w", engine.ID(), err)
	}

	response := &RunResponse{
		DatasetVersionID: datasetVersionID,
		EngineID:         engine.ID(),
	}
	for _, result := range results {
		if err := r.persist(ctx, engine.ID(), datasetVersionID, req.StartedAt, result, response); err != nil {
			return nil, err
		}
	}

	r.logger.Info("Engine run persisted",
		zap.String("engine_id", engine.ID()),
		zap.String("dataset_version_id", datasetVersionID.String()),
		zap.Int("findings", len(response.FindingIDs)),
		zap.Int("evidence", len(response.EvidenceIDs)))

	return response, nil
}

// persist writes one result in the caller-responsible order: evidence first,
// then the finding, then the links binding them.
func (r *Runner) persist(
	ctx context.Context,
	engineID string,
	datasetVersionID uuid.UUID,
	startedAt time.Time,
	result *Result,
	response *RunResponse,
) error {
	evidenceIDs := make([]uuid.UUID, 0, len(result.Evidence))
	for _, draft := range result.Evidence {
		record, err := r.ledger.CreateEvidence(ctx, services.CreateEvidenceInput{
			DatasetVersionID: datasetVersionID,
			EngineID:         engineID,
			Kind:             draft.Kind,
			StableKey:        draft.StableKey,
			Payload:          draft.Payload,
			CreatedAt:        startedAt,
		})
		if err != nil {
			return err
		}
		evidenceIDs = append(evidenceIDs, record.ID)
	}

	finding, err := r.ledger.CreateFinding(ctx, services.CreateFindingInput{
		DatasetVersionID: datasetVersionID,
		RawRecordID:      result.Finding.RawRecordID,
		Kind:             result.Finding.Kind,
		StableKey:        result.Finding.StableKey,
		Payload:          result.Finding.Payload,
		CreatedAt:        startedAt,
	})
	if err != nil {
		return err
	}

	for _, evidenceID := range evidenceIDs {
		link, err := r.ledger.CreateLink(ctx, services.CreateLinkInput{
			FindingID:  finding.ID,
			EvidenceID: evidenceID,
			CreatedAt:  startedAt,
		})
		if err != nil {
			return err
		}
		response.LinkIDs = append(response.LinkIDs, link.ID)
	}

	response.EvidenceIDs = append(response.EvidenceIDs, evidenceIDs...)
	response.FindingIDs = append(response.FindingIDs, finding.ID)
	return nil
}
