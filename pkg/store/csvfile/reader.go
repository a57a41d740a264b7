package csvfile

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/rs/zerolog"
)

const DefaultTimeLayout = time.DateTime

// fallbackLayouts are tried after the configured layout.
var fallbackLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

type Reader struct {
	layouts []string
}

func NewReader(layout string) *Reader {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	layouts := []string{layout}
	for _, fallback := range fallbackLayouts {
		if !slices.Contains(layouts, fallback) {
			layouts = append(layouts, fallback)
		}
	}
	return &Reader{layouts: layouts}
}

// ReadFile opens path and extracts its transaction table.
func (r *Reader) ReadFile(ctx context.Context, path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: failed to open %s: %w", domain.ErrUnreadableInput, path, err)
	}
	defer f.Close()

	return r.Read(ctx, f)
}

// Read extracts a table from CSV text with a header row. Known headers, canonical or
// legacy, are mapped onto transaction fields and any other column is dropped. Empty
// cells and unparsable timestamps become nulls.
func (r *Reader) Read(ctx context.Context, in io.Reader) (domain.Table, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Table{}, fmt.Errorf("%w: missing CSV header", domain.ErrUnreadableInput)
		}
		return domain.Table{}, fmt.Errorf("%w: failed to read CSV header: %w", domain.ErrUnreadableInput, err)
	}

	positions := make(map[string]int, len(header))
	var columns []string
	for i, name := range header {
		column := domain.CanonicalColumn(strings.TrimPrefix(name, "\ufeff"))
		if !slices.Contains(domain.Columns, column) {
			continue
		}
		if _, seen := positions[column]; seen {
			continue
		}
		positions[column] = i
		columns = append(columns, column)
	}

	table := domain.Table{Columns: columns}
	var badTimestamps int
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return domain.Table{}, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("%w: failed to read CSV line %d: %w", domain.ErrUnreadableInput, line, err)
		}

		cell := func(column string) string {
			i, ok := positions[column]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		record := domain.TransactionRecord{
			Type:     nullString(cell(domain.ColumnType)),
			ID:       nullString(cell(domain.ColumnID)),
			Amount:   nullString(cell(domain.ColumnAmount)),
			Sender:   nullString(cell(domain.ColumnSender)),
			Receiver: nullString(cell(domain.ColumnReceiver)),
		}
		var ok bool
		if record.StartTime, ok = r.parseTime(cell(domain.ColumnStartTime)); !ok {
			badTimestamps++
		}
		if record.EndTime, ok = r.parseTime(cell(domain.ColumnEndTime)); !ok {
			badTimestamps++
		}
		table.Records = append(table.Records, record)
	}

	logger := zerolog.Ctx(ctx)
	if badTimestamps > 0 {
		logger.Warn().Int("count", badTimestamps).Msg("unparsable timestamps coerced to null")
	}
	logger.Info().
		Int("records", table.Len()).
		Strs("columns", table.Columns).
		Msg("extracted transactions")

	return table, nil
}

// parseTime reports false only when a non-empty cell could not be parsed.
func (r *Reader) parseTime(value string) (sql.NullTime, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullTime{}, true
	}
	for _, layout := range r.layouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return sql.NullTime{Time: t, Valid: true}, true
		}
	}
	return sql.NullTime{}, false
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
