package validation

import "github.com/de-tools/mpesa-etl/pkg/models/domain"

// MissingColumns returns the required columns absent from the table, in required order.
func MissingColumns(table domain.Table, required []string) []string {
	missing := make([]string, 0)
	for _, column := range required {
		if !table.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	return missing
}
