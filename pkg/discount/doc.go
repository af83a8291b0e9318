// Package discount computes coupon discounts for subscription plans.
//
// All arithmetic uses github.com/shopspring/decimal; the minor-unit precision
// comes from the ISO 4217 data in golang.org/x/text/currency (two places for
// BRL and USD, zero for JPY).
//
//	calc := discount.NewCalculator(currency.BRL)
//	st := calc.Calculate(decimal.RequireFromString("100.00"), decimal.NewFromInt(20))
//	// st.Amount == 20.00, st.FinalPrice == 80.00
//
// Calculate is pure and has no error conditions. Percentages outside
// [0, 100] should be clamped with ClampPercent before calling it.
package discount
