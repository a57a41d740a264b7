package sql

import (
	"context"
	"database/sql"
	"fmt"

	dbsql "github.com/databricks/databricks-sql-go"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	_ "github.com/lib/pq"
	sf "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)

func SnowflakeFactory(ctx context.Context, profile config.WarehouseProfile) (*Sink, error) {
	dsn := profile.DSN
	if dsn == "" {
		var err error
		dsn, err = sf.DSN(&sf.Config{
			Account:   profile.Account,
			User:      profile.User,
			Password:  profile.Password,
			Database:  profile.Database,
			Schema:    profile.Schema,
			Warehouse: profile.Warehouse,
			Role:      profile.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create snowflake DSN: %w", domain.ErrInvalidConfig, err)
		}
	}
	return open(ctx, "snowflake", dsn, Snowflake, profile.Table)
}

func DatabricksFactory(ctx context.Context, profile config.WarehouseProfile) (*Sink, error) {
	if profile.DSN != "" {
		return open(ctx, "databricks", profile.DSN, Databricks, profile.Table)
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(profile.Host),
		dbsql.WithPort(profile.Port),
		dbsql.WithHTTPPath(profile.HTTPPath),
		dbsql.WithAccessToken(profile.Token),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create databricks connector: %w", domain.ErrInvalidConfig, err)
	}
	return NewSink(sql.OpenDB(connector), Databricks, profile.Table)
}

func PostgresFactory(ctx context.Context, profile config.WarehouseProfile) (*Sink, error) {
	return open(ctx, "postgres", profile.DSN, Postgres, profile.Table)
}

func SQLiteFactory(ctx context.Context, profile config.WarehouseProfile) (*Sink, error) {
	return open(ctx, "sqlite", profile.DSN, SQLite, profile.Table)
}

func open(_ context.Context, driver, dsn string, dialect Dialect, table string) (*Sink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: %s profile needs a dsn", domain.ErrInvalidConfig, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	sink, err := NewSink(db, dialect, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}
