package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Writer struct {
	layout string
}

func NewWriter(layout string) *Writer {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return &Writer{layout: layout}
}

// WriteFile writes the table to path, creating parent directories as needed.
func (w *Writer) WriteFile(ctx context.Context, path string, table domain.EnrichedTable) error {
	return w.toFile(ctx, path, table.Len(), func(f io.Writer) error {
		return w.Write(ctx, f, table)
	})
}

// WriteRawFile writes an untransformed table, as produced by the sample generators.
func (w *Writer) WriteRawFile(ctx context.Context, path string, table domain.Table) error {
	return w.toFile(ctx, path, table.Len(), func(f io.Writer) error {
		return w.WriteRaw(ctx, f, table)
	})
}

// Write emits a header row of table.Columns followed by one row per record. Nulls are
// written as empty cells.
func (w *Writer) Write(ctx context.Context, out io.Writer, table domain.EnrichedTable) error {
	return writeRows(ctx, out, table.Columns, table.Records, w.format)
}

func (w *Writer) WriteRaw(ctx context.Context, out io.Writer, table domain.Table) error {
	return writeRows(ctx, out, table.Columns, table.Records, w.format)
}

func (w *Writer) toFile(ctx context.Context, path string, records int, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Int("records", records).Msg("saved data")
	return nil
}

type valuer interface {
	Value(column string) (any, bool)
}

func writeRows[R valuer](ctx context.Context, out io.Writer, columns []string, records []R, format func(any, bool) string) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(columns))
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, column := range columns {
			row[i] = format(record.Value(column))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func (w *Writer) format(value any, valid bool) string {
	if !valid {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(w.layout)
	case decimal.Decimal:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
