package api

import "time"

type Severity string

type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Count    int      `json:"count"`
	Penalty  float64  `json:"penalty"`
	Message  string   `json:"message"`
}

type Validation struct {
	SchemaValid        bool      `json:"schema_valid"`
	BusinessRulesValid bool      `json:"business_rules_valid"`
	QualityScore       float64   `json:"quality_score"`
	MissingColumns     []string  `json:"missing_columns,omitempty"`
	Findings           []Finding `json:"findings"`
}

type QualityReport struct {
	TotalRecords          int            `json:"total_records"`
	MissingPerColumn      map[string]int `json:"missing_per_column"`
	DuplicateCount        int            `json:"duplicate_count"`
	AmountOutlierCount    int            `json:"amount_outlier_count"`
	TypeDistribution      map[string]int `json:"type_distribution"`
	NegativeDurationCount int            `json:"negative_duration_count"`
}

type TimePeriod struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration_days"`
}
