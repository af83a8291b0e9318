package subscription

import "errors"

var (
	ErrNoPlanSelected = errors.New("no subscription plan selected")
	ErrPlanNotFound   = errors.New("subscription plan not found")

	ErrEmptyCouponCode    = errors.New("coupon code is empty")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponInactive     = errors.New("coupon is not active")
	ErrCouponLookupFailed = errors.New("coupon lookup failed")

	ErrInvalidInstrument    = errors.New("invalid payment instrument")
	ErrInvalidExpiry        = errors.New("invalid card expiry")
	ErrEmptySubscriptionRef = errors.New("subscription reference missing from response")
)

// SubmissionError is returned when the subscription could not be created.
// Message is a user-displayable text from the server and may be empty.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return "subscription submission failed: " + e.Message
	}
	if e.Err != nil {
		return "subscription submission failed: " + e.Err.Error()
	}
	return "subscription submission failed"
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsSubmissionError reports whether err is or wraps a *SubmissionError.
func IsSubmissionError(err error) bool {
	var e *SubmissionError
	return errors.As(err, &e)
}
