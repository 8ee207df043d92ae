package util

import (
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Round2 округляет до 2 знаков (половина - от нуля).
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// TruncateToThousand отбрасывает сумму до целых тысяч вниз: floor(v/1000)*1000.
// Используется только для отображения «용역비», в расчёты не возвращается.
func TruncateToThousand(v float64) float64 {
	return decimal.NewFromFloat(v).Div(thousand).Floor().Mul(thousand).InexactFloat64()
}

// Percent возвращает base × rate / 100 в decimal.
func Percent(base decimal.Decimal, ratePercent float64) decimal.Decimal {
	return base.Mul(decimal.NewFromFloat(ratePercent)).Div(decimal.NewFromInt(100))
}
