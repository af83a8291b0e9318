// Package subscription holds the checkout-side model of a clinic subscription:
// plans, coupons, the card data entered by the user, and the two request/response
// steps that precede activation.
//
// # Coupons
//
// CouponValidator checks a user-entered code against the selected plan:
//
//	v := subscription.NewCouponValidator(apiClient)
//	coupon, err := v.Validate(ctx, " promo20 ", &plan)
//	switch {
//	case errors.Is(err, subscription.ErrNoPlanSelected):
//		// ask the user to pick a plan first
//	case errors.Is(err, subscription.ErrCouponNotFound),
//		errors.Is(err, subscription.ErrCouponInactive):
//		// user-correctable, let them edit the code
//	case errors.Is(err, subscription.ErrCouponLookupFailed):
//		// transport/server failure, the user may resubmit the code
//	}
//
// Codes are trimmed and upper-cased before the lookup. The validator never
// touches plan or discount state; the caller applies the result.
//
// # Submission
//
// Submitter performs the single create-subscription call and returns the
// subscription reference used for confirmation polling. Every failure is a
// *SubmissionError carrying the server's message when one is available.
// Submitter does not prevent concurrent calls: the caller must hold a
// submission guard for the duration of Submit.
//
// Card data travels in PaymentInstrument and is validated only for presence
// and shape; tokenization and card checks belong to the payment processor.
package subscription
