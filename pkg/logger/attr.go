package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// CheckoutID records the checkout attempt identifier.
func CheckoutID(id string) slog.Attr {
	return slog.String("checkout_id", id)
}

// SubscriptionRef records the subscription reference returned on submission.
func SubscriptionRef(ref string) slog.Attr {
	return slog.String("subscription_ref", ref)
}

// PlanID records the selected plan.
func PlanID(id string) slog.Attr {
	return slog.String("plan_id", id)
}

// Attempt records a polling attempt as "attempt" out of "max_attempts".
func Attempt(n, total int) slog.Attr {
	return slog.Group("poll", slog.Int("attempt", n), slog.Int("max_attempts", total))
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
