package sql

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/mpesa-etl/pkg/services/config"
)

// SinkFactory opens a sink for a warehouse profile.
type SinkFactory func(ctx context.Context, profile config.WarehouseProfile) (*Sink, error)

// Registry manages warehouse sink factories keyed by driver name.
type Registry interface {
	Register(driver string, factory SinkFactory) error
	Create(ctx context.Context, profile config.WarehouseProfile) (*Sink, error)
	ListDrivers() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]SinkFactory
}

func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]SinkFactory),
	}
}

// DefaultRegistry knows every bundled warehouse driver.
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(Snowflake.Name, SnowflakeFactory)
	_ = r.Register(Databricks.Name, DatabricksFactory)
	_ = r.Register(Postgres.Name, PostgresFactory)
	_ = r.Register(SQLite.Name, SQLiteFactory)
	return r
}

func (r *registry) Register(driver string, factory SinkFactory) error {
	if driver == "" {
		return fmt.Errorf("driver name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[driver]; exists {
		return fmt.Errorf("driver %q is already registered", driver)
	}

	r.factories[driver] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, profile config.WarehouseProfile) (*Sink, error) {
	r.mu.RLock()
	factory, exists := r.factories[profile.Driver]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("driver %q is not registered", profile.Driver)
	}

	return factory(ctx, profile)
}

func (r *registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for driver := range r.factories {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}
