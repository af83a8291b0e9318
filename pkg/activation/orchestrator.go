package activation

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/clinickit/pkg/discount"
	"github.com/dmitrymomot/clinickit/pkg/guard"
	"github.com/dmitrymomot/clinickit/pkg/logger"
	"github.com/dmitrymomot/clinickit/pkg/messages"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

// SessionRefresher reloads the caller's session after entitlements may have changed.
type SessionRefresher func(ctx context.Context) error

// checkout is one submit attempt and the polling that follows it.
type checkout struct {
	id       string
	ref      subscription.Ref
	session  *PollingSession
	done     chan struct{}
	result   *Result
	finished bool
}

// Orchestrator drives a checkout from plan selection to a final outcome.
// All methods are safe for concurrent use. Handlers run outside the lock.
type Orchestrator struct {
	validator *subscription.CouponValidator
	submitter *subscription.Submitter
	poller    *Poller
	guard     guard.Guard
	guardKey  string
	refresh   SessionRefresher
	calc      discount.Calculator
	msgs      *messages.Catalog
	logger    *slog.Logger

	onProgress func(Progress)
	onOutcome  func(Result)

	mu        sync.Mutex
	plan      *subscription.Plan
	coupon    *subscription.Coupon
	discount  discount.State
	phase     Phase
	attempt   int
	statusMsg string
	current   *checkout
	closed    bool
}

// New creates an orchestrator. Panics if any collaborator is nil.
func New(validator *subscription.CouponValidator, submitter *subscription.Submitter, poller *Poller, opts ...Option) *Orchestrator {
	if validator == nil || submitter == nil || poller == nil {
		panic("activation: validator, submitter and poller are required")
	}
	o := &Orchestrator{
		validator: validator,
		submitter: submitter,
		poller:    poller,
		guard:     guard.NewMemory(),
		guardKey:  uuid.NewString(),
		calc:      discount.NewCalculator(discount.DefaultCurrency),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.msgs == nil {
		o.msgs = messages.MustNew(messages.DefaultLanguage)
	}
	o.logger = o.logger.With(logger.Component("activation"))
	return o
}

// SelectPlan makes plan the checkout target. Changing to a different plan
// drops the applied coupon.
func (o *Orchestrator) SelectPlan(plan subscription.Plan) discount.State {
	o.mu.Lock()
	if o.plan == nil || o.plan.ID != plan.ID {
		o.coupon = nil
	}
	o.plan = &plan
	o.recomputeLocked()
	d := o.discount
	p := o.progressLocked()
	o.mu.Unlock()

	o.emitProgress(p)
	return d
}

// ApplyCoupon validates code against the selected plan and applies it.
// On error the previous coupon and discount are kept.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, code string) (discount.State, error) {
	o.mu.Lock()
	plan := o.plan
	prev := o.discount
	o.mu.Unlock()

	coupon, err := o.validator.Validate(ctx, code, plan)
	if err != nil {
		return prev, err
	}

	o.mu.Lock()
	if o.plan == nil || plan == nil || o.plan.ID != plan.ID {
		d := o.discount
		o.mu.Unlock()
		return d, ErrPlanChanged
	}
	o.coupon = coupon
	o.recomputeLocked()
	d := o.discount
	p := o.progressLocked()
	o.mu.Unlock()

	o.logger.DebugContext(ctx, "coupon applied",
		slog.String("coupon", coupon.Code),
		slog.String("percent", d.Percent.String()),
	)
	o.emitProgress(p)
	return d, nil
}

// RemoveCoupon clears the applied coupon.
func (o *Orchestrator) RemoveCoupon() discount.State {
	o.mu.Lock()
	o.coupon = nil
	o.recomputeLocked()
	d := o.discount
	p := o.progressLocked()
	o.mu.Unlock()

	o.emitProgress(p)
	return d
}

// Submit sends the subscription request and starts confirmation polling.
//
// Precondition failures are returned without side effects. If another
// submission holds the guard, Submit does nothing and returns nil. A failed
// submission is published as OutcomeSubmissionError and also returned.
func (o *Orchestrator) Submit(ctx context.Context, instrument subscription.PaymentInstrument) error {
	o.mu.Lock()
	closed, plan := o.closed, o.plan
	o.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if plan == nil {
		return subscription.ErrNoPlanSelected
	}

	instrument = instrument.Normalize()
	if err := instrument.Validate(); err != nil {
		return err
	}

	acquired, err := o.guard.TryAcquire(ctx, o.guardKey)
	if err != nil {
		return errors.Join(ErrGuardUnavailable, err)
	}
	if !acquired {
		o.logger.DebugContext(ctx, "submission already in flight, ignoring submit")
		return nil
	}

	c, req, err := o.beginCheckout(instrument)
	if err != nil {
		o.releaseGuard(ctx)
		return err
	}

	ctx = logger.WithCheckoutID(ctx, c.id)
	ref, err := o.submitter.Submit(ctx, req)
	o.releaseGuard(ctx)

	if err != nil {
		msg := o.msgs.Get(messages.CheckoutSubmissionFailed)
		var subErr *subscription.SubmissionError
		if errors.As(err, &subErr) && subErr.Message != "" {
			msg = subErr.Message
		}
		o.finish(c, Result{
			CheckoutID: c.id,
			Outcome:    OutcomeSubmissionError,
			Message:    msg,
			Err:        err,
		})
		return err
	}

	o.startPolling(ctx, c, ref)
	return nil
}

// beginCheckout replaces any previous checkout with a fresh one in the
// submitting phase and snapshots the submit request.
func (o *Orchestrator) beginCheckout(instrument subscription.PaymentInstrument) (*checkout, subscription.SubmitRequest, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, subscription.SubmitRequest{}, ErrClosed
	}
	if o.plan == nil {
		o.mu.Unlock()
		return nil, subscription.SubmitRequest{}, subscription.ErrNoPlanSelected
	}

	prev := o.supersedeLocked()

	c := &checkout{id: uuid.NewString(), done: make(chan struct{})}
	o.current = c
	o.phase = PhaseSubmitting
	o.attempt = 0
	o.statusMsg = o.msgs.Get(messages.CheckoutSubmitting)

	plan := *o.plan
	req := subscription.SubmitRequest{
		Plan:           &plan,
		Instrument:     instrument,
		IdempotencyKey: c.id,
	}
	if o.coupon != nil {
		coupon := *o.coupon
		req.Coupon = &coupon
	}
	p := o.progressLocked()
	o.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	o.emitProgress(p)
	return c, req, nil
}

// supersedeLocked ends the current checkout without an outcome and returns
// its polling session, which the caller cancels after releasing the lock.
func (o *Orchestrator) supersedeLocked() *PollingSession {
	c := o.current
	if c == nil || c.finished {
		return nil
	}
	c.finished = true
	close(c.done)
	return c.session
}

func (o *Orchestrator) startPolling(ctx context.Context, c *checkout, ref subscription.Ref) {
	o.mu.Lock()
	if o.current != c || c.finished {
		o.mu.Unlock()
		return
	}
	c.ref = ref
	o.phase = PhasePolling
	o.statusMsg = o.msgs.Get(messages.CheckoutPolling, 1, o.poller.MaxAttempts())

	// Polling outlives the submit call, so it must not inherit its cancellation.
	pollCtx := context.WithoutCancel(ctx)
	c.session = o.poller.Start(pollCtx, ref, PollHandlers{
		OnAttempt: func(n, total int) { o.onAttempt(c, n, total) },
		OnDone:    func(r PollResult) { o.onPollDone(pollCtx, c, r) },
	})
	p := o.progressLocked()
	o.mu.Unlock()

	o.logger.InfoContext(ctx, "awaiting subscription activation",
		logger.SubscriptionRef(string(ref)),
		slog.Int("max_attempts", o.poller.MaxAttempts()),
		slog.Duration("interval", o.poller.Interval()),
	)
	o.emitProgress(p)
}

func (o *Orchestrator) onAttempt(c *checkout, n, total int) {
	o.mu.Lock()
	if o.current != c || c.finished {
		o.mu.Unlock()
		return
	}
	o.attempt = n
	o.statusMsg = o.msgs.Get(messages.CheckoutPolling, n, total)
	p := o.progressLocked()
	o.mu.Unlock()

	o.emitProgress(p)
}

func (o *Orchestrator) onPollDone(ctx context.Context, c *checkout, r PollResult) {
	o.mu.Lock()
	stale := o.current != c || c.finished
	o.mu.Unlock()
	if stale {
		return
	}

	outcome := outcomeOf(r.State)
	if outcome == OutcomeNone {
		return
	}

	if o.refresh != nil {
		if err := o.refresh(ctx); err != nil {
			o.logger.WarnContext(ctx, "session refresh failed", logger.Error(err))
		}
	}

	var key messages.Key
	switch outcome {
	case OutcomeActive:
		key = messages.CheckoutActive
	case OutcomeTimedOut:
		key = messages.CheckoutTimedOut
	default:
		key = messages.CheckoutVerificationFailed
	}

	o.finish(c, Result{
		CheckoutID:      c.id,
		Outcome:         outcome,
		SubscriptionRef: c.ref,
		Message:         o.msgs.Get(key),
		Attempts:        r.Attempts,
		Err:             r.Err,
	})
}

// finish records the outcome of c unless it was superseded or the
// orchestrator was closed in the meantime.
func (o *Orchestrator) finish(c *checkout, res Result) {
	o.mu.Lock()
	if o.closed || o.current != c || c.finished {
		o.mu.Unlock()
		return
	}
	c.finished = true
	c.result = &res
	o.phase = PhaseDone
	o.statusMsg = res.Message
	p := o.progressLocked()
	close(c.done)
	o.mu.Unlock()

	log := o.logger.With(logger.CheckoutID(c.id), slog.String("outcome", string(res.Outcome)))
	if res.Outcome == OutcomeActive {
		log.Info("checkout finished", logger.SubscriptionRef(string(res.SubscriptionRef)))
	} else {
		log.Warn("checkout finished", logger.Error(res.Err))
	}

	o.emitProgress(p)
	if o.onOutcome != nil {
		o.onOutcome(res)
	}
}

func (o *Orchestrator) releaseGuard(ctx context.Context) {
	if err := o.guard.Release(context.WithoutCancel(ctx), o.guardKey); err != nil {
		o.logger.ErrorContext(ctx, "failed to release submission guard", logger.Error(err))
	}
}

// Progress returns the current snapshot.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progressLocked()
}

// Wait blocks until the checkout in progress reaches an outcome.
func (o *Orchestrator) Wait(ctx context.Context) (Result, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return Result{}, ErrClosed
	}
	c := o.current
	o.mu.Unlock()
	if c == nil {
		return Result{}, ErrNoCheckout
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-c.done:
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case c.result != nil:
		return *c.result, nil
	case o.closed:
		return Result{}, ErrClosed
	default:
		return Result{}, ErrCheckoutSuperseded
	}
}

// Close cancels polling. After Close no transition or callback fires and
// Submit returns ErrClosed. Close is idempotent.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	session := o.supersedeLocked()
	o.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
}

// Describe maps an error returned by the orchestrator to a user-facing message.
func (o *Orchestrator) Describe(err error) string {
	var subErr *subscription.SubmissionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &subErr) && subErr.Message != "":
		return subErr.Message
	case errors.Is(err, subscription.ErrNoPlanSelected):
		return o.msgs.Get(messages.CheckoutNoPlan)
	case errors.Is(err, subscription.ErrInvalidInstrument):
		return o.msgs.Get(messages.CheckoutInvalidCard)
	case errors.Is(err, subscription.ErrEmptyCouponCode):
		return o.msgs.Get(messages.CouponEmpty)
	case errors.Is(err, subscription.ErrCouponNotFound):
		return o.msgs.Get(messages.CouponNotFound)
	case errors.Is(err, subscription.ErrCouponInactive):
		return o.msgs.Get(messages.CouponInactive)
	case errors.Is(err, subscription.ErrCouponLookupFailed):
		return o.msgs.Get(messages.CouponLookupFailed)
	case subErr != nil:
		return o.msgs.Get(messages.CheckoutSubmissionFailed)
	}
	return err.Error()
}

func (o *Orchestrator) recomputeLocked() {
	switch {
	case o.plan == nil:
		o.discount = discount.State{}
	case o.coupon == nil:
		o.discount = o.calc.None(o.plan.Price)
	default:
		o.discount = o.calc.Calculate(o.plan.Price, discount.ClampPercent(o.coupon.DiscountValue))
	}
}

func (o *Orchestrator) progressLocked() Progress {
	p := Progress{
		Phase:         o.phase,
		Attempt:       o.attempt,
		MaxAttempts:   o.poller.MaxAttempts(),
		StatusMessage: o.statusMsg,
		Discount:      o.discount,
	}
	if o.plan != nil {
		plan := *o.plan
		p.Plan = &plan
	}
	if o.coupon != nil {
		coupon := *o.coupon
		p.Coupon = &coupon
	}
	if c := o.current; c != nil {
		p.CheckoutID = c.id
		p.SubscriptionRef = c.ref
		if c.result != nil {
			p.Outcome = c.result.Outcome
		}
	}
	return p
}

func (o *Orchestrator) emitProgress(p Progress) {
	if o.onProgress != nil {
		o.onProgress(p)
	}
}
