package activation

import "errors"

var (
	ErrClosed             = errors.New("activation: orchestrator is closed")
	ErrNoCheckout         = errors.New("activation: no checkout in progress")
	ErrCheckoutSuperseded = errors.New("activation: checkout superseded by a newer submission")
	ErrPlanChanged        = errors.New("activation: plan changed while validating coupon")
	ErrGuardUnavailable   = errors.New("activation: submission guard unavailable")
)
