// Package logger builds *slog.Logger instances for clinickit components.
//
// New applies functional options (format, level, output, static attributes,
// context extractors) and wraps the handler so attributes stored in a
// context.Context are added at log time:
//
//	log := logger.New(logger.WithEnvironment(cfg.AppEnv, "clinicpay"))
//	ctx = logger.WithCheckoutID(ctx, checkoutID)
//	log.InfoContext(ctx, "subscription submitted", logger.PlanID(plan.ID))
//	// ... checkout_id=... plan_id=...
//
// Attribute helpers (Error, CheckoutID, SubscriptionRef, PlanID, Attempt,
// Component) keep key names consistent across packages. Components default
// to Discard when no logger is supplied.
package logger
