package domain

import "github.com/shopspring/decimal"

// Monetary amounts carry 2 fractional digits, stored percentages and alert
// thresholds carry 4. All comparisons are exact decimal comparisons.
const (
	AmountScale  = 2
	PercentScale = 4
)

var oneHundred = decimal.NewFromInt(100)

// RoundAmount normalizes a monetary value to the currency scale.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// RoundPercent normalizes a stored percentage or threshold fraction.
func RoundPercent(d decimal.Decimal) decimal.Decimal {
	return d.Round(PercentScale)
}

// PercentOf returns part/whole*100 at the currency scale, and 0 when whole
// is zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(oneHundred).DivRound(whole, AmountScale)
}

// SplitGrossVAT splits a gross (TTC) amount into net (HT) and VAT parts for
// the given rate in percent. net + vat equals the rounded gross exactly, so
// the breakdown never drifts from the recorded amount.
func SplitGrossVAT(gross, rate decimal.Decimal) (net, vat decimal.Decimal) {
	gross = RoundAmount(gross)
	if rate.IsZero() {
		return gross, decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(rate.Div(oneHundred))
	net = gross.DivRound(divisor, AmountScale)
	vat = gross.Sub(net)
	return net, vat
}
