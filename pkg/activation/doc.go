// Package activation reconciles a subscription checkout with the payment
// processor's asynchronous activation.
//
// The Orchestrator owns the checkout: plan selection, coupon application,
// a guarded one-shot submission, and confirmation polling. The Poller checks
// the subscription status a fixed number of times, waiting a fixed interval
// before each check, and ends in one of three states:
//
//	confirmed  the processor reported ACTIVE      → OutcomeActive
//	exhausted  budget spent without ACTIVE        → OutcomeTimedOut
//	errored    the last status query failed       → OutcomeVerificationFailed
//
// A failed submission never starts polling and ends as OutcomeSubmissionError.
// Once polling reaches an outcome the optional SessionRefresher runs so the
// caller sees the new entitlements; its failure is logged and does not
// change the outcome.
//
// Basic usage:
//
//	poller := activation.NewPoller(api)
//	o := activation.New(
//	    subscription.NewCouponValidator(api),
//	    subscription.NewSubmitter(api),
//	    poller,
//	    activation.WithSessionRefresher(api.RefreshSession),
//	    activation.WithProgressHandler(render),
//	)
//	defer o.Close()
//
//	o.SelectPlan(plan)
//	if _, err := o.ApplyCoupon(ctx, code); err != nil {
//	    show(o.Describe(err))
//	}
//	if err := o.Submit(ctx, card); err != nil {
//	    return err
//	}
//	res, err := o.Wait(ctx)
//
// Timers come from a scheduler.Scheduler; tests use scheduler.Manual to run
// the whole flow on simulated time.
package activation
