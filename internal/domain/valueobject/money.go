package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// MoneyScale количество знаков после запятой для сохраняемых сумм.
const MoneyScale = 2

const DefaultCurrency = "BRL"

// RoundMoney округляет сумму до копеек перед сохранением.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// NewAmount проверяет, что сумма положительна, и округляет её.
func NewAmount(d decimal.Decimal, field string) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, apperror.Validation("некорректная сумма", apperror.FieldError{
			Field:   field,
			Message: "сумма должна быть положительной",
		})
	}
	return RoundMoney(d), nil
}

type Budget struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func NewBudget(min, max decimal.Decimal) (Budget, error) {
	if min.IsNegative() || max.IsNegative() {
		return Budget{}, apperror.Validation("бюджет не может быть отрицательным")
	}
	if min.GreaterThan(max) {
		return Budget{}, apperror.Validation("минимальный бюджет не может превышать максимальный",
			apperror.FieldError{Field: "budget.min", Message: "должен быть не больше budget.max"})
	}
	return Budget{Min: RoundMoney(min), Max: RoundMoney(max)}, nil
}

func (b Budget) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(b.Min) && amount.LessThanOrEqual(b.Max)
}

func (b Budget) String() string {
	return fmt.Sprintf("%s %s - %s", DefaultCurrency, b.Min.StringFixed(MoneyScale), b.Max.StringFixed(MoneyScale))
}
