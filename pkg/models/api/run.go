package api

import "time"

type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary carries money as decimal strings so no precision is lost in transit.
type Summary struct {
	TotalTransactions  int         `json:"total_transactions"`
	Period             *TimePeriod `json:"period,omitempty"`
	TotalAmount        string      `json:"total_amount"`
	AverageAmount      string      `json:"average_amount"`
	MedianAmount       string      `json:"median_amount"`
	TotalFees          string      `json:"total_fees"`
	AverageFee         string      `json:"average_fee"`
	AverageDuration    float64     `json:"average_duration_seconds"`
	HighValueCount     int         `json:"high_value_count"`
	ByType             []Count     `json:"by_type"`
	ByCategory         []Count     `json:"by_category"`
	ByAmountTier       []Count     `json:"by_amount_tier"`
	CriticalFieldsFull bool        `json:"critical_fields_complete"`
	ChronologicalOrder bool        `json:"chronological_order"`
}

type Run struct {
	ID                 string    `json:"id"`
	Source             string    `json:"source"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	RecordCount        int       `json:"record_count"`
	SchemaValid        bool      `json:"schema_valid"`
	BusinessRulesValid bool      `json:"business_rules_valid"`
	QualityScore       float64   `json:"quality_score"`
}

type RunDetail struct {
	Run        Run           `json:"run"`
	Validation Validation    `json:"validation"`
	Quality    QualityReport `json:"quality"`
	Summary    Summary       `json:"summary"`
}

// Transaction is one enriched row keyed by column name. Unavailable values are null.
type Transaction map[string]any

type TransactionPage struct {
	RunID        string        `json:"run_id"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
	Transactions []Transaction `json:"transactions"`
}
