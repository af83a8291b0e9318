package activation

import (
	"log/slog"

	"github.com/dmitrymomot/clinickit/pkg/discount"
	"github.com/dmitrymomot/clinickit/pkg/guard"
	"github.com/dmitrymomot/clinickit/pkg/messages"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGuard replaces the in-process submission guard. key scopes the lock,
// typically to the paying user so parallel sessions of one user serialize.
func WithGuard(g guard.Guard, key string) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.guard = g
		}
		if key != "" {
			o.guardKey = key
		}
	}
}

// WithSessionRefresher sets the hook invoked once polling reaches an outcome.
func WithSessionRefresher(fn SessionRefresher) Option {
	return func(o *Orchestrator) { o.refresh = fn }
}

// WithCalculator sets the discount calculator, which fixes the currency.
func WithCalculator(c discount.Calculator) Option {
	return func(o *Orchestrator) { o.calc = c }
}

// WithMessages sets the catalog used for status texts.
func WithMessages(c *messages.Catalog) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.msgs = c
		}
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgressHandler registers a callback for every progress change.
func WithProgressHandler(fn func(Progress)) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithOutcomeHandler registers a callback invoked once per checkout outcome.
func WithOutcomeHandler(fn func(Result)) Option {
	return func(o *Orchestrator) { o.onOutcome = fn }
}
