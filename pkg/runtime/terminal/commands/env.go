package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/logger"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/de-tools/mpesa-etl/pkg/services/history"
	"github.com/de-tools/mpesa-etl/pkg/services/summary"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb"
	sqlsink "github.com/de-tools/mpesa-etl/pkg/store/sql"
	"github.com/spf13/cobra"
)

// ReportHandler renders a report to the terminal.
type ReportHandler interface {
	Handle(report *domain.Report) error
}

// Env holds what every command resolves from the root flags.
type Env struct {
	ConfigPath string
	LogLevel   string
	Format     string
	Reporters  map[string]ReportHandler
	Sinks      sqlsink.Registry
	Now        func() time.Time
}

// Setup loads the configuration and returns a context carrying the configured logger.
// Logs go to stderr so reports on stdout stay clean.
func (e *Env) Setup(cmd *cobra.Command) (*config.Config, context.Context, error) {
	cfg, err := config.LoadConfig(e.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.LoggerConfig()
	if e.LogLevel != "" {
		logCfg.Level = e.LogLevel
	}
	log, err := logger.NewWithWriter(cmd.ErrOrStderr(), logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cfg, log.WithContext(ctx), nil
}

func (e *Env) Reporter() (ReportHandler, error) {
	reporter, ok := e.Reporters[e.Format]
	if !ok {
		formats := make([]string, 0, len(e.Reporters))
		for format := range e.Reporters {
			formats = append(formats, format)
		}
		sort.Strings(formats)
		return nil, fmt.Errorf("unknown output format %q, expected one of %s", e.Format, strings.Join(formats, ", "))
	}
	return reporter, nil
}

// OpenHistory opens the local run store. The returned closer releases the database.
func (e *Env) OpenHistory(cfg *config.Config) (history.Service, io.Closer, error) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.DuckDBPath})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run store %s: %w", cfg.Storage.DuckDBPath, err)
	}

	svc, err := history.NewService(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return svc, db, nil
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// writeMarkdown writes the analysis report to path, or to out when path is empty.
func writeMarkdown(out io.Writer, path string, s domain.Summary, result *domain.ValidationResult, generatedAt time.Time) error {
	if path == "" {
		return summary.WriteMarkdown(out, s, result, generatedAt)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	if err := summary.WriteMarkdown(f, s, result, generatedAt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
