package discount

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	hundred = decimal.NewFromInt(100)

	// DefaultCurrency is used when no currency is configured.
	DefaultCurrency = currency.BRL
)

// State is the discount derived from a plan price and a coupon percentage.
// It is never stored on its own; recompute it whenever either input changes.
type State struct {
	Percent    decimal.Decimal
	Amount     decimal.Decimal
	FinalPrice decimal.Decimal
}

// IsZero reports whether no discount applies.
func (s State) IsZero() bool {
	return s.Amount.IsZero()
}

// Calculator computes discounts at the minor-unit precision of a currency.
type Calculator struct {
	unit  currency.Unit
	scale int32
}

// NewCalculator returns a calculator for the given currency.
func NewCalculator(unit currency.Unit) Calculator {
	scale, _ := currency.Standard.Rounding(unit)
	return Calculator{unit: unit, scale: int32(scale)}
}

// Currency returns the calculator's currency unit.
func (c Calculator) Currency() currency.Unit {
	return c.unit
}

// Calculate returns the discount amount and final price for price and percent.
// The amount is floored at minor-unit precision and the final price is rounded
// to the same precision and never negative. Percent is expected in [0, 100];
// callers clamp it with ClampPercent.
func (c Calculator) Calculate(price, percent decimal.Decimal) State {
	if price.IsNegative() {
		price = decimal.Zero
	}

	amount := price.Mul(percent).Div(hundred).RoundFloor(c.scale)
	if amount.GreaterThan(price) {
		amount = price
	}

	final := price.Sub(amount).Round(c.scale)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return State{
		Percent:    percent,
		Amount:     amount,
		FinalPrice: final,
	}
}

// None returns the state for a price without a coupon.
func (c Calculator) None(price decimal.Decimal) State {
	return c.Calculate(price, decimal.Zero)
}

// Format renders an amount with the calculator's currency symbol for the given language.
func (c Calculator) Format(amount decimal.Decimal, tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(c.unit.Amount(amount.Round(c.scale).InexactFloat64())))
}

// Calculate is a shortcut for NewCalculator(DefaultCurrency).Calculate.
func Calculate(price, percent decimal.Decimal) State {
	return NewCalculator(DefaultCurrency).Calculate(price, percent)
}

// ClampPercent bounds a coupon percentage to [0, 100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
