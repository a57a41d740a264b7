package generator

import (
	"regexp"
	"testing"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/de-tools/mpesa-etl/pkg/services/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownKind(t *testing.T) {
	_, err := New("faker", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "faker")
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			first, err := New(kind, 7)
			require.NoError(t, err)
			second, err := New(kind, 7)
			require.NoError(t, err)
			other, err := New(kind, 8)
			require.NoError(t, err)

			a := first.Generate(25)
			assert.Equal(t, a, second.Generate(25))
			assert.NotEqual(t, a, other.Generate(25))
		})
	}
}

func TestRandomGenerator(t *testing.T) {
	g, err := New(KindRandom, 42)
	require.NoError(t, err)

	table := g.Generate(300)

	require.Equal(t, 300, table.Len())
	assert.Equal(t, domain.Columns, table.Columns)
	idPattern := regexp.MustCompile(`^M[A-E]\d{3}[F-J]$`)
	windowEnd := randomEpoch.Add(randomWindowMinutes * time.Minute)
	for _, r := range table.Records {
		assert.Regexp(t, idPattern, r.ID.String)
		assert.False(t, r.StartTime.Time.Before(randomEpoch))
		assert.False(t, r.StartTime.Time.After(windowEnd))

		seconds := r.EndTime.Time.Sub(r.StartTime.Time).Seconds()
		assert.GreaterOrEqual(t, seconds, 1.0)
		assert.LessOrEqual(t, seconds, 30.0)

		amount := r.ParsedAmount()
		require.True(t, amount.Valid)
		assert.True(t, amount.Decimal.GreaterThanOrEqual(decimal.NewFromInt(50)), amount.Decimal.String())
		assert.True(t, amount.Decimal.LessThanOrEqual(decimal.NewFromInt(10000)), amount.Decimal.String())
		assert.Contains(t, transactionTypes, r.Type.String)
		assert.Contains(t, randomReceivers, r.Receiver.String)
	}
}

func TestRealisticGenerator(t *testing.T) {
	g, err := New(KindRealistic, 42)
	require.NoError(t, err)

	table := g.Generate(50)

	require.Equal(t, 50, table.Len())
	for i, r := range table.Records {
		hour := r.StartTime.Time.Hour()
		assert.GreaterOrEqual(t, hour, openingHour)
		assert.LessOrEqual(t, hour, closingHour)
		assert.Equal(t, 5+i/recordsPerDay, r.StartTime.Time.Day())

		seconds := r.EndTime.Time.Sub(r.StartTime.Time).Seconds()
		assert.GreaterOrEqual(t, seconds, 1.0)
		assert.LessOrEqual(t, seconds, float64(maxRealisticSecs))

		assert.Contains(t, receiversByType[r.Type.String], r.Receiver.String)
		assert.Regexp(t, `^L[A-F]\d{2}[G-L]\d{2,}$`, r.ID.String)
	}
}

func TestGeneratedDataPassesValidation(t *testing.T) {
	g, err := New(KindRealistic, 3)
	require.NoError(t, err)
	table := g.Generate(100)

	settings := validation.DefaultSettings()
	settings.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	result := validation.Validate(t.Context(), table, settings)

	assert.True(t, result.SchemaValid)
	assert.True(t, result.BusinessRulesValid)
	for _, r := range table.Records {
		enriched := derive.Enrich(r, derive.DefaultFeeRules())
		assert.NotEqual(t, domain.CategoryOther, enriched.TypeCategory, r.Type.String)
	}
}
