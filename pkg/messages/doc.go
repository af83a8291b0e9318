// Package messages holds the user-facing checkout status texts.
//
// Messages are loaded from an embedded YAML catalog keyed by language tag.
// Portuguese (pt-BR) is the default; English is also bundled. Lookups for a
// key missing in the selected language fall back to pt-BR, and unknown keys
// render as the key itself so a missing translation is visible but harmless.
//
//	cat := messages.MustNew("pt-BR")
//	cat.Get(messages.CheckoutPolling, 1, 3)
package messages
