package derive

import (
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Right-closed bins (lower, upper]; anything above the last bound is Jumbo.
var tierBounds = []struct {
	upper decimal.Decimal
	tier  domain.AmountTier
}{
	{decimal.NewFromInt(100), domain.TierVerySmall},
	{decimal.NewFromInt(500), domain.TierSmall},
	{decimal.NewFromInt(3000), domain.TierMedium},
	{decimal.NewFromInt(10000), domain.TierLarge},
	{decimal.NewFromInt(35000), domain.TierXLarge},
	{decimal.NewFromInt(150000), domain.Tier2XLarge},
}

// Tier buckets a positive amount. Missing, zero and negative amounts fall outside the
// first bin and have no tier.
func Tier(amount decimal.NullDecimal) domain.AmountTier {
	if !amount.Valid || !amount.Decimal.IsPositive() {
		return domain.TierUnavailable
	}
	for _, bound := range tierBounds {
		if amount.Decimal.LessThanOrEqual(bound.upper) {
			return bound.tier
		}
	}
	return domain.TierJumbo
}
