package store

import (
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
)

// Run is a persisted pipeline run.
type Run struct {
	ID                 string
	Source             string
	StartedAt          time.Time
	FinishedAt         time.Time
	Columns            []string
	RecordCount        int
	SchemaValid        bool
	BusinessRulesValid bool
	QualityScore       float64
	Quality            domain.QualityReport
	Findings           []domain.Finding
}

// Page bounds a listing of enriched transactions.
type Page struct {
	Limit  int
	Offset int
}
