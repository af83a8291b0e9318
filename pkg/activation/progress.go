package activation

import (
	"github.com/dmitrymomot/clinickit/pkg/discount"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

// Phase is the stage of the current checkout.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhasePolling
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhasePolling:
		return "polling"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// IsSubmitting reports whether the create request is in flight.
func (p Phase) IsSubmitting() bool { return p == PhaseSubmitting }

// IsPolling reports whether activation is being confirmed.
func (p Phase) IsPolling() bool { return p == PhasePolling }

// Outcome is the final result of a checkout.
type Outcome string

const (
	OutcomeNone               Outcome = ""
	OutcomeActive             Outcome = "active"
	OutcomeTimedOut           Outcome = "timed_out"
	OutcomeVerificationFailed Outcome = "verification_failed"
	OutcomeSubmissionError    Outcome = "submission_error"
)

// outcomeOf maps a terminal poll state to a checkout outcome.
func outcomeOf(s PollState) Outcome {
	switch s {
	case PollConfirmed:
		return OutcomeActive
	case PollExhausted:
		return OutcomeTimedOut
	case PollErrored:
		return OutcomeVerificationFailed
	}
	return OutcomeNone
}

// Progress is a snapshot of the orchestrator for rendering.
type Progress struct {
	Phase           Phase
	Attempt         int
	MaxAttempts     int
	StatusMessage   string
	Outcome         Outcome
	Discount        discount.State
	Plan            *subscription.Plan
	Coupon          *subscription.Coupon
	CheckoutID      string
	SubscriptionRef subscription.Ref
}

// Result is delivered once per checkout when it reaches an outcome.
type Result struct {
	CheckoutID      string
	Outcome         Outcome
	SubscriptionRef subscription.Ref
	Message         string // user-facing text
	Attempts        int
	Err             error // submission or last verification error, if any
}
