package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/de-tools/mpesa-etl/pkg/services/validation"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Stage string

const (
	StageExtracted Stage = "extracted"
	StageValidated Stage = "validated"
	StageEnriched  Stage = "enriched"
)

// Step represents a single stage of a run.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the working data of one run. Input is the run's private copy of the
// caller's table.
type State struct {
	RunID      string
	Stage      Stage
	Input      domain.Table
	Quality    domain.QualityReport
	Validation domain.ValidationResult
	Output     domain.EnrichedTable
}

// Pipeline executes steps sequentially and stops at the first failing one.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// QualityReportStep profiles the table as extracted.
type QualityReportStep struct{}

func (s *QualityReportStep) Execute(ctx context.Context, state *State) error {
	state.Quality = validation.QualityReport(ctx, state.Input)
	state.Stage = StageExtracted
	return nil
}

// ValidateStep runs schema and business rule validation. A failed validation is logged
// and the run moves on.
type ValidateStep struct {
	Settings validation.Settings
}

func (s *ValidateStep) Execute(ctx context.Context, state *State) error {
	state.Validation = validation.Validate(ctx, state.Input, s.Settings)
	if !state.Validation.Valid() {
		zerolog.Ctx(ctx).Warn().
			Float64("quality_score", state.Validation.QualityScore).
			Msg("data validation failed, continuing with transformation")
	}
	state.Stage = StageValidated
	return nil
}

// EnrichStep derives every field for every record. Records are split into batches and
// enriched by at most Workers goroutines; each batch writes only its own slots.
type EnrichStep struct {
	Fees      derive.FeeRules
	Workers   int
	BatchSize int
}

func (s *EnrichStep) Execute(ctx context.Context, state *State) error {
	input := state.Input.Records
	records := make([]domain.EnrichedRecord, len(input))

	batch := s.BatchSize
	if batch <= 0 {
		batch = len(input)
	}
	workers := max(s.Workers, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(input); start += batch {
		end := min(start+batch, len(input))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				records[i] = derive.Enrich(input[i], s.Fees)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to enrich records: %w", err)
	}

	columns := slices.Clone(state.Input.Columns)
	columns = append(columns, domain.DerivedColumns...)
	state.Output = domain.EnrichedTable{Columns: columns, Records: records}

	zerolog.Ctx(ctx).Info().Int("records", len(records)).Msg("successfully transformed records")
	return nil
}

// SortStep orders the enriched table by start time. The sort is stable and records
// without a start time go last.
type SortStep struct{}

func (s *SortStep) Execute(_ context.Context, state *State) error {
	slices.SortStableFunc(state.Output.Records, func(a, b domain.EnrichedRecord) int {
		at, bt := a.Source.StartTime, b.Source.StartTime
		switch {
		case !at.Valid && !bt.Valid:
			return 0
		case !at.Valid:
			return 1
		case !bt.Valid:
			return -1
		default:
			return at.Time.Compare(bt.Time)
		}
	})
	state.Stage = StageEnriched
	return nil
}
