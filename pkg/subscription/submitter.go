package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// CreateRequest is the payload for creating a subscription with a credit card.
type CreateRequest struct {
	PlanID      string
	BillingType BillingType
	HolderName  string
	CardNumber  string
	ExpiryMonth string
	ExpiryYear  string
	CCV         string
	CouponName  string // empty when no coupon applies

	// IdempotencyKey identifies one checkout attempt so the backend can
	// de-duplicate a request resent after a client-side timeout.
	IdempotencyKey string
}

// Creator performs the single network call that creates a subscription.
type Creator interface {
	CreateSubscription(ctx context.Context, req CreateRequest) (Ref, error)
}

// UserMessager is implemented by transport errors that carry a message
// suitable for showing to the user.
type UserMessager interface {
	UserMessage() string
}

// SubmitRequest groups the inputs of one submission.
type SubmitRequest struct {
	Plan           *Plan
	Coupon         *Coupon
	Instrument     PaymentInstrument
	IdempotencyKey string
}

// Submitter issues the one-shot create-subscription request.
// It does not guard against concurrent calls; the caller holds the submission guard.
type Submitter struct {
	creator Creator
	logger  *slog.Logger
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithSubmitterLogger sets the submitter logger.
func WithSubmitterLogger(l *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSubmitter creates a submitter. Panics if creator is nil.
func NewSubmitter(creator Creator, opts ...SubmitterOption) *Submitter {
	if creator == nil {
		panic("subscription: Creator is required")
	}
	s := &Submitter{
		creator: creator,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates the subscription and returns its reference.
// Every failure is returned as a *SubmissionError.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (Ref, error) {
	if req.Plan == nil {
		return "", &SubmissionError{Err: ErrNoPlanSelected}
	}

	payload := CreateRequest{
		PlanID:         req.Plan.ID,
		BillingType:    BillingTypeCreditCard,
		HolderName:     req.Instrument.HolderName,
		CardNumber:     req.Instrument.Number,
		ExpiryMonth:    req.Instrument.ExpiryMonth,
		ExpiryYear:     req.Instrument.ExpiryYear,
		CCV:            req.Instrument.CCV,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Coupon != nil {
		payload.CouponName = NormalizeCouponCode(req.Coupon.Code)
	}

	log := s.logger.With(
		slog.String("plan_id", payload.PlanID),
		slog.String("card", req.Instrument.Masked()),
	)
	if payload.CouponName != "" {
		log = log.With(slog.String("coupon", payload.CouponName))
	}

	ref, err := s.creator.CreateSubscription(ctx, payload)
	if err != nil {
		log.ErrorContext(ctx, "subscription submission failed", slog.Any("error", err))
		subErr := &SubmissionError{Err: err}
		var um UserMessager
		if errors.As(err, &um) {
			subErr.Message = um.UserMessage()
		}
		return "", subErr
	}
	if ref == "" {
		log.ErrorContext(ctx, "subscription created without reference")
		return "", &SubmissionError{Err: ErrEmptySubscriptionRef}
	}

	log.InfoContext(ctx, "subscription submitted", slog.String("subscription_ref", string(ref)))
	return ref, nil
}
