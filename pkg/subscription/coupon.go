package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Coupon is a named percentage discount.
type Coupon struct {
	Code          string          // normalized to upper case
	Active        bool
	DiscountValue decimal.Decimal // percentage, 0..100
}

// NormalizeCouponCode trims and upper-cases a user-entered coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponSource looks up a coupon by its normalized code.
// Implementations return ErrCouponNotFound when the code is unknown.
type CouponSource interface {
	CouponByName(ctx context.Context, code string) (*Coupon, error)
}

// CouponValidator checks a coupon code against the selected plan.
type CouponValidator struct {
	source CouponSource
	logger *slog.Logger
}

// CouponValidatorOption configures a CouponValidator.
type CouponValidatorOption func(*CouponValidator)

// WithCouponLogger sets the validator logger.
func WithCouponLogger(l *slog.Logger) CouponValidatorOption {
	return func(v *CouponValidator) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewCouponValidator creates a validator backed by the given source.
// Panics if source is nil.
func NewCouponValidator(source CouponSource, opts ...CouponValidatorOption) *CouponValidator {
	if source == nil {
		panic("subscription: CouponSource is required")
	}
	v := &CouponValidator{
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns the active coupon for code.
// A nil plan always yields ErrNoPlanSelected, whatever the code.
// Not-found and inactive coupons are user-correctable; every other failure
// is reported as ErrCouponLookupFailed joined with the cause.
func (v *CouponValidator) Validate(ctx context.Context, code string, plan *Plan) (*Coupon, error) {
	if plan == nil {
		return nil, ErrNoPlanSelected
	}

	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrEmptyCouponCode
	}

	coupon, err := v.source.CouponByName(ctx, code)
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return nil, ErrCouponNotFound
	case err != nil:
		v.logger.WarnContext(ctx, "coupon lookup failed",
			slog.String("coupon", code),
			slog.Any("error", err),
		)
		return nil, errors.Join(ErrCouponLookupFailed, err)
	case coupon == nil:
		return nil, ErrCouponNotFound
	case !coupon.Active:
		return nil, ErrCouponInactive
	}

	result := *coupon
	result.Code = code
	return &result, nil
}
