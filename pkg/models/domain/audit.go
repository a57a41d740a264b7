package domain

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Rule names reported in findings.
const (
	RuleSchema         = "schema"
	RuleCriticalFields = "critical_fields"
	RuleAmountRange    = "amount_range"
	RuleDateOrdering   = "date_ordering"
	RuleFutureDated    = "future_dated"
	RuleAllowedType    = "allowed_type"
)

// Finding is one violated rule with the number of offending records and the score
// deduction it caused.
type Finding struct {
	Rule     string
	Severity Severity
	Count    int
	Penalty  float64
	Message  string
}

// ValidationResult is advisory: it is logged and reported, never used to reject data.
type ValidationResult struct {
	SchemaValid        bool
	BusinessRulesValid bool
	QualityScore       float64
	MissingColumns     []string
	Findings           []Finding
}

func (v ValidationResult) Valid() bool {
	return v.SchemaValid && v.BusinessRulesValid
}

// QualityReport holds observational statistics about a raw table.
type QualityReport struct {
	TotalRecords          int
	MissingPerColumn      map[string]int
	DuplicateCount        int
	AmountOutlierCount    int
	TypeDistribution      map[string]int
	NegativeDurationCount int
}
