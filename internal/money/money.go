// Package money holds the rounding and tolerance rules shared by every
// monetary computation: amounts are kept at two decimals and compared with a
// one-cent tolerance.
package money

import "github.com/shopspring/decimal"

// Tolerancia is the one-cent tolerance used for zero and target comparisons.
var Tolerancia = decimal.New(1, -2)

// R2 rounds to cents.
func R2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// EsCero reports whether |d| ≤ 0.01.
func EsCero(d decimal.Decimal) bool { return d.Abs().LessThanOrEqual(Tolerancia) }

// Positivo reports whether d is greater than zero after rounding to cents.
func Positivo(d decimal.Decimal) bool { return R2(d).IsPositive() }

// Excede reports whether a exceeds limite by more than the tolerance.
func Excede(a, limite decimal.Decimal) bool {
	return a.GreaterThan(limite.Add(Tolerancia))
}

// NoNegativo floors d at zero.
func NoNegativo(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Porcentaje returns part/total × 100 rounded to cents, or zero when total is zero.
func Porcentaje(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return R2(part.Div(total).Mul(decimal.NewFromInt(100)))
}
