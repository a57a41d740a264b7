package derive

import "github.com/shopspring/decimal"

// FeeRules is a two-tier percentage fee schedule. Amounts below Threshold pay LowRate with
// a MinFee floor, the rest pay HighRate capped at MaxFee.
type FeeRules struct {
	Threshold decimal.Decimal
	LowRate   decimal.Decimal
	HighRate  decimal.Decimal
	MinFee    decimal.Decimal
	MaxFee    decimal.Decimal
	Precision int32
}

func DefaultFeeRules() FeeRules {
	return FeeRules{
		Threshold: decimal.NewFromInt(1000),
		LowRate:   decimal.RequireFromString("0.01"),
		HighRate:  decimal.RequireFromString("0.005"),
		MinFee:    decimal.RequireFromString("5.0"),
		MaxFee:    decimal.RequireFromString("100.0"),
		Precision: 2,
	}
}

// Fee applies the schedule. Rounding is half-to-even at the configured precision.
func (r FeeRules) Fee(amount decimal.NullDecimal) decimal.NullDecimal {
	if !amount.Valid {
		return decimal.NullDecimal{}
	}

	if amount.Decimal.LessThan(r.Threshold) {
		fee := amount.Decimal.Mul(r.LowRate).RoundBank(r.Precision)
		return decimal.NewNullDecimal(decimal.Max(fee, r.MinFee))
	}

	fee := amount.Decimal.Mul(r.HighRate).RoundBank(r.Precision)
	return decimal.NewNullDecimal(decimal.Min(fee, r.MaxFee))
}

// NetAmount is amount minus fee, unavailable when either side is.
func NetAmount(amount, fee decimal.NullDecimal) decimal.NullDecimal {
	if !amount.Valid || !fee.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount.Decimal.Sub(fee.Decimal))
}
