package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/de-tools/mpesa-etl/pkg/services/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultBatchSize = 512

type Settings struct {
	Validation validation.Settings
	Fees       derive.FeeRules
	Workers    int
	BatchSize  int
}

func DefaultSettings() Settings {
	return Settings{
		Validation: validation.DefaultSettings(),
		Fees:       derive.DefaultFeeRules(),
		Workers:    runtime.NumCPU(),
		BatchSize:  defaultBatchSize,
	}
}

// Result is everything a run hands back to its caller.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Quality    domain.QualityReport
	Validation domain.ValidationResult
	Table      domain.EnrichedTable
}

// Orchestrator takes a table from Extracted through advisory validation to Enriched.
type Orchestrator struct {
	settings Settings
	logger   zerolog.Logger
}

// NewOrchestrator binds the run settings and the logger every run reports to.
func NewOrchestrator(settings Settings, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{settings: settings, logger: logger}
}

// Run processes one table. The caller's table is copied first and never modified.
// Only context cancellation can make a run fail; data defects are reported in the
// result instead.
func (o *Orchestrator) Run(ctx context.Context, table domain.Table) (*Result, error) {
	state := &State{
		RunID: uuid.NewString(),
		Input: table.Clone(),
	}
	logger := o.logger.With().Str("run_id", state.RunID).Logger()
	ctx = logger.WithContext(ctx)

	startedAt := time.Now().UTC()
	logger.Info().Int("records", table.Len()).Msg("starting data transformation")

	p := NewPipeline(
		&QualityReportStep{},
		&ValidateStep{Settings: o.settings.Validation},
		&EnrichStep{Fees: o.settings.Fees, Workers: o.settings.Workers, BatchSize: o.settings.BatchSize},
		&SortStep{},
	)
	if err := p.Execute(ctx, state); err != nil {
		logger.Error().Err(err).Str("stage", string(state.Stage)).Msg("pipeline run failed")
		return nil, err
	}

	logger.Info().Str("stage", string(state.Stage)).Msg("pipeline run completed")
	return &Result{
		RunID:      state.RunID,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Quality:    state.Quality,
		Validation: state.Validation,
		Table:      state.Output,
	}, nil
}
