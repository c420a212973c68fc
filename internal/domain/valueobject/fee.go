package valueobject

import "github.com/shopspring/decimal"

// FeePolicy рассчитывает комиссию платформы для суммы платежа.
type FeePolicy interface {
	Fee(amount decimal.Decimal) decimal.Decimal
}

// PercentFeePolicy комиссия вида amount*Percent/100 + Fixed.
type PercentFeePolicy struct {
	Percent decimal.Decimal
	Fixed   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// DefaultFeePercent применяется, когда активный шлюз не настроен.
var DefaultFeePercent = decimal.NewFromInt(10)

func DefaultFeePolicy() PercentFeePolicy {
	return PercentFeePolicy{Percent: DefaultFeePercent, Fixed: decimal.Zero}
}

func (p PercentFeePolicy) Fee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(p.Percent).Div(hundred).Add(p.Fixed)
	if fee.IsNegative() {
		return decimal.Zero
	}
	return RoundMoney(fee)
}
