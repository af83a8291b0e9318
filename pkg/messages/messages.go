package messages

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Key identifies a user-facing message.
type Key string

const (
	CheckoutSubmitting         Key = "checkout.submitting"
	CheckoutPolling            Key = "checkout.polling"
	CheckoutActive             Key = "checkout.active"
	CheckoutTimedOut           Key = "checkout.timed_out"
	CheckoutVerificationFailed Key = "checkout.verification_failed"
	CheckoutSubmissionFailed   Key = "checkout.submission_failed"
	CheckoutNoPlan             Key = "checkout.no_plan"
	CheckoutInvalidCard        Key = "checkout.invalid_card"
	CouponApplied              Key = "coupon.applied"
	CouponEmpty                Key = "coupon.empty"
	CouponNotFound             Key = "coupon.not_found"
	CouponInactive             Key = "coupon.inactive"
	CouponLookupFailed         Key = "coupon.lookup_failed"
)

// DefaultLanguage is used when the requested language has no catalog.
const DefaultLanguage = "pt-BR"

var (
	ErrFailedToParse        = errors.New("failed to parse message catalog")
	ErrLanguageNotSupported = errors.New("language not supported")
)

//go:embed messages.yaml
var builtin []byte

// Catalog resolves message keys for one language, falling back to DefaultLanguage.
type Catalog struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

// Parse decodes a YAML document of the form {lang: {key: message}}.
func Parse(data []byte) (map[string]map[string]string, error) {
	var out map[string]map[string]string
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, errors.Join(ErrFailedToParse, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no languages found", ErrFailedToParse)
	}
	return out, nil
}

// New builds a catalog for lang from the built-in messages.
// Language matching is case-insensitive and falls back from "en-US" to "en".
func New(lang string) (*Catalog, error) {
	all, err := Parse(builtin)
	if err != nil {
		return nil, err
	}
	return FromMap(all, lang)
}

// MustNew is like New but panics on error.
func MustNew(lang string) *Catalog {
	c, err := New(lang)
	if err != nil {
		panic(fmt.Sprintf("messages: %v", err))
	}
	return c
}

// FromMap builds a catalog for lang from already parsed messages.
func FromMap(all map[string]map[string]string, lang string) (*Catalog, error) {
	resolved, ok := match(all, lang)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotSupported, lang)
	}
	c := &Catalog{lang: resolved, messages: all[resolved]}
	if fb, ok := match(all, DefaultLanguage); ok {
		c.fallback = all[fb]
	}
	return c, nil
}

func match(all map[string]map[string]string, lang string) (string, bool) {
	for l := range all {
		if strings.EqualFold(l, lang) {
			return l, true
		}
	}
	if base, _, found := strings.Cut(lang, "-"); found {
		for l := range all {
			if strings.EqualFold(l, base) {
				return l, true
			}
		}
	}
	return "", false
}

// Lang returns the resolved language of the catalog.
func (c *Catalog) Lang() string {
	return c.lang
}

// Get returns the formatted message for key. Unknown keys render as the key itself.
func (c *Catalog) Get(key Key, args ...any) string {
	msg, ok := c.messages[string(key)]
	if !ok {
		msg, ok = c.fallback[string(key)]
	}
	if !ok {
		return string(key)
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
