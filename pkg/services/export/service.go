package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/services/summary"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	s3store "github.com/de-tools/mpesa-etl/pkg/store/s3"
	sqlsink "github.com/de-tools/mpesa-etl/pkg/store/sql"
	"github.com/rs/zerolog"
)

const (
	TransactionsObject = "transactions.csv"
	ReportObject       = "report.md"
)

// Uploader stores run artifacts in object storage.
type Uploader interface {
	Upload(ctx context.Context, runID string, objects ...s3store.Object) ([]string, error)
}

// TableWriter appends enriched rows to a warehouse.
type TableWriter interface {
	Write(ctx context.Context, runID string, table domain.EnrichedTable) error
	Dialect() string
	Close() error
}

// Service ships the outcome of a run to a named destination profile.
type Service interface {
	Export(ctx context.Context, profile string, result *pipeline.Result) ([]string, error)
}

type service struct {
	profiles      config.ProfileRegistry
	openUploader  func(ctx context.Context, profile config.S3Profile) (Uploader, error)
	openWarehouse func(ctx context.Context, profile config.WarehouseProfile) (TableWriter, error)
	csv           *csvfile.Writer
	now           func() time.Time
}

func NewService(profiles config.ProfileRegistry, sinks sqlsink.Registry, timeLayout string) Service {
	return &service{
		profiles: profiles,
		openUploader: func(ctx context.Context, profile config.S3Profile) (Uploader, error) {
			return s3store.NewFromProfile(ctx, profile)
		},
		openWarehouse: func(ctx context.Context, profile config.WarehouseProfile) (TableWriter, error) {
			return sinks.Create(ctx, profile)
		},
		csv: csvfile.NewWriter(timeLayout),
		now: time.Now,
	}
}

func (s *service) Export(ctx context.Context, name string, result *pipeline.Result) ([]string, error) {
	logger := zerolog.Ctx(ctx).With().Str("profile", name).Str("run_id", result.RunID).Logger()

	profile, err := s.profiles.GetProfile(ctx, name)
	if err != nil {
		return nil, err
	}

	var locations []string
	switch profile.Type {
	case domain.ProfileTypeS3:
		locations, err = s.toObjectStorage(ctx, profile.S3, result)
	case domain.ProfileTypeWarehouse:
		locations, err = s.toWarehouse(ctx, profile.Warehouse, result)
	default:
		err = fmt.Errorf("%w: unsupported profile type %q", domain.ErrInvalidConfig, profile.Type)
	}
	if err != nil {
		logger.Error().Err(err).Msg("export failed")
		return nil, fmt.Errorf("export to %s: %w", name, err)
	}

	logger.Info().Strs("locations", locations).Msg("export finished")
	return locations, nil
}

func (s *service) toObjectStorage(ctx context.Context, profile config.S3Profile, result *pipeline.Result) ([]string, error) {
	uploader, err := s.openUploader(ctx, profile)
	if err != nil {
		return nil, err
	}

	var transactions bytes.Buffer
	if err := s.csv.Write(ctx, &transactions, result.Table); err != nil {
		return nil, err
	}

	var report bytes.Buffer
	if err := summary.WriteMarkdown(&report, summary.Summarize(result.Table), &result.Validation, s.now()); err != nil {
		return nil, err
	}

	return uploader.Upload(ctx, result.RunID,
		s3store.Object{Name: TransactionsObject, ContentType: "text/csv", Body: transactions.Bytes()},
		s3store.Object{Name: ReportObject, ContentType: "text/markdown", Body: report.Bytes()},
	)
}

func (s *service) toWarehouse(ctx context.Context, profile config.WarehouseProfile, result *pipeline.Result) ([]string, error) {
	writer, err := s.openWarehouse(ctx, profile)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	if err := writer.Write(ctx, result.RunID, result.Table); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s:%s", writer.Dialect(), profile.Table)}, nil
}
