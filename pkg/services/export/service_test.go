package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	s3store "github.com/de-tools/mpesa-etl/pkg/store/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profiles map[string]*config.Profile

func (p profiles) GetProfiles(context.Context) ([]domain.ConfigProfile, error) {
	return nil, nil
}

func (p profiles) GetProfile(_ context.Context, name string) (*config.Profile, error) {
	profile, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: profile %q not found", domain.ErrInvalidConfig, name)
	}
	return profile, nil
}

type fakeUploader struct {
	runID   string
	objects []s3store.Object
}

func (f *fakeUploader) Upload(_ context.Context, runID string, objects ...s3store.Object) ([]string, error) {
	f.runID = runID
	f.objects = objects
	uris := make([]string, len(objects))
	for i, o := range objects {
		uris[i] = "s3://bucket/" + runID + "/" + o.Name
	}
	return uris, nil
}

type fakeWriter struct {
	rows   int
	err    error
	closed bool
}

func (f *fakeWriter) Write(_ context.Context, _ string, table domain.EnrichedTable) error {
	f.rows = table.Len()
	return f.err
}

func (f *fakeWriter) Dialect() string { return "postgres" }

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func result() *pipeline.Result {
	start := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)
	record := domain.TransactionRecord{
		StartTime: sql.NullTime{Time: start, Valid: true},
		EndTime:   sql.NullTime{Time: start.Add(3 * time.Second), Valid: true},
		Type:      sql.NullString{String: "Pay Bill", Valid: true},
		ID:        sql.NullString{String: "MA123F", Valid: true},
		Amount:    sql.NullString{String: "1500", Valid: true},
		Sender:    sql.NullString{String: "Jane Doe", Valid: true},
		Receiver:  sql.NullString{String: "KPLC", Valid: true},
	}
	return &pipeline.Result{
		RunID:      "run-1",
		Validation: domain.ValidationResult{SchemaValid: true, BusinessRulesValid: true, QualityScore: 100},
		Table: domain.EnrichedTable{
			Columns: append(append([]string{}, domain.Columns...), domain.DerivedColumns...),
			Records: []domain.EnrichedRecord{derive.Enrich(record, derive.DefaultFeeRules())},
		},
	}
}

func newTestService(uploader *fakeUploader, writer *fakeWriter) *service {
	return &service{
		profiles: profiles{
			"archive": {Name: "archive", Type: domain.ProfileTypeS3, S3: config.S3Profile{Bucket: "bucket"}},
			"finance": {Name: "finance", Type: domain.ProfileTypeWarehouse, Warehouse: config.WarehouseProfile{Driver: "postgres", Table: "mpesa"}},
		},
		openUploader: func(context.Context, config.S3Profile) (Uploader, error) {
			return uploader, nil
		},
		openWarehouse: func(context.Context, config.WarehouseProfile) (TableWriter, error) {
			return writer, nil
		},
		csv: csvfile.NewWriter(csvfile.DefaultTimeLayout),
		now: func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestExport_ObjectStorage(t *testing.T) {
	// Given
	uploader := &fakeUploader{}
	svc := newTestService(uploader, &fakeWriter{})

	// When
	locations, err := svc.Export(context.Background(), "archive", result())

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://bucket/run-1/transactions.csv", "s3://bucket/run-1/report.md"}, locations)
	require.Len(t, uploader.objects, 2)

	csv := string(uploader.objects[0].Body)
	assert.True(t, strings.HasPrefix(csv, "start_time,end_time,type,id,amount,sender,receiver,duration_seconds"))
	assert.Contains(t, csv, "2023-01-02 09:00:00")
	assert.Equal(t, "text/markdown", uploader.objects[1].ContentType)
	assert.Contains(t, string(uploader.objects[1].Body), "KES 1,500.00")
}

func TestExport_Warehouse(t *testing.T) {
	writer := &fakeWriter{}
	svc := newTestService(&fakeUploader{}, writer)

	locations, err := svc.Export(context.Background(), "finance", result())

	require.NoError(t, err)
	assert.Equal(t, []string{"postgres:mpesa"}, locations)
	assert.Equal(t, 1, writer.rows)
	assert.True(t, writer.closed)
}

func TestExport_Failures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("connection reset")}
	svc := newTestService(&fakeUploader{}, writer)

	_, err := svc.Export(context.Background(), "finance", result())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export to finance: connection reset")
	assert.True(t, writer.closed)

	_, err = svc.Export(context.Background(), "missing", result())
	require.Error(t, err)
	assert.True(t, domain.IsInvalidConfig(err))
}
