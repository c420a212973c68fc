package dto

import "github.com/shopspring/decimal"

// money форматирует сумму с двумя знаками после запятой.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func convertAll[T, D any](items []T, convert func(T) D) []D {
	out := make([]D, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}
