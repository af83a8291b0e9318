package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type checkoutIDKey struct{}

// WithCheckoutID stores the checkout attempt ID in ctx so every record logged
// with that context carries it.
func WithCheckoutID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, checkoutIDKey{}, id)
}

// CheckoutIDFromContext returns the checkout ID stored by WithCheckoutID.
func CheckoutIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(checkoutIDKey{}).(string)
	return id, ok && id != ""
}

func checkoutIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := CheckoutIDFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return CheckoutID(id), true
}

// contextHandler injects extractor attributes at Handle time, so values
// stored in the context after the logger was created are still captured.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
