package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesFixture = `[archive]
s3_bucket = mpesa-archive
s3_prefix = etl/daily
region = eu-west-1

[finance]
driver = snowflake
account = xy12345
user = etl
password = secret
database = FINANCE
schema = MPESA
warehouse = LOADING

[lakehouse]
driver = databricks
host = adb-123.azuredatabricks.net
http_path = /sql/1.0/warehouses/abc
token = dapi123
table = bronze.mpesa
`

func TestProfileRegistry_GetProfiles(t *testing.T) {
	// Given
	registry, err := NewProfileRegistry(writeConfig(t, "profiles.ini", profilesFixture))
	require.NoError(t, err)

	// When
	profiles, err := registry.GetProfiles(context.Background())

	// Then
	require.NoError(t, err)
	assert.Equal(t, []domain.ConfigProfile{
		{Name: "archive", Type: domain.ProfileTypeS3},
		{Name: "finance", Type: domain.ProfileTypeWarehouse},
		{Name: "lakehouse", Type: domain.ProfileTypeWarehouse},
	}, profiles)
}

func TestProfileRegistry_GetProfile(t *testing.T) {
	registry, err := NewProfileRegistry(writeConfig(t, "profiles.ini", profilesFixture))
	require.NoError(t, err)

	t.Run("s3", func(t *testing.T) {
		profile, err := registry.GetProfile(context.Background(), "archive")
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileTypeS3, profile.Type)
		assert.Equal(t, S3Profile{Bucket: "mpesa-archive", Prefix: "etl/daily", Region: "eu-west-1"}, profile.S3)
	})

	t.Run("snowflake", func(t *testing.T) {
		profile, err := registry.GetProfile(context.Background(), "finance")
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileTypeWarehouse, profile.Type)
		assert.Equal(t, "snowflake", profile.Warehouse.Driver)
		assert.Equal(t, "xy12345", profile.Warehouse.Account)
		assert.Equal(t, "LOADING", profile.Warehouse.Warehouse)
		assert.Equal(t, "enriched_transactions", profile.Warehouse.Table)
	})

	t.Run("databricks", func(t *testing.T) {
		profile, err := registry.GetProfile(context.Background(), "lakehouse")
		require.NoError(t, err)
		assert.Equal(t, "bronze.mpesa", profile.Warehouse.Table)
		assert.Equal(t, "/sql/1.0/warehouses/abc", profile.Warehouse.HTTPPath)
		assert.Equal(t, 443, profile.Warehouse.Port)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := registry.GetProfile(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, domain.IsInvalidConfig(err))
	})
}

func TestProfileRegistry_UntypedSection(t *testing.T) {
	// Given
	registry, err := NewProfileRegistry(writeConfig(t, "profiles.ini", "[broken]\nregion = us-east-1\n"))
	require.NoError(t, err)

	// When
	_, err = registry.GetProfiles(context.Background())

	// Then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewProfileRegistry_MissingFile(t *testing.T) {
	_, err := NewProfileRegistry(filepath.Join(t.TempDir(), "missing.ini"))

	require.Error(t, err)
	assert.True(t, domain.IsInvalidConfig(err))
}
