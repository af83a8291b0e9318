package subscription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PaymentInstrument holds the card data entered by the user.
// It is passed straight through to the processor and never stored.
type PaymentInstrument struct {
	HolderName  string `validate:"required"`
	Number      string `validate:"required,numeric"`
	ExpiryMonth string `validate:"required,len=2,numeric"`
	ExpiryYear  string `validate:"required,len=4,numeric"`
	CCV         string `validate:"required,numeric"`
}

// Normalize strips masking characters from numeric fields and trims the holder name.
func (p PaymentInstrument) Normalize() PaymentInstrument {
	p.HolderName = strings.TrimSpace(p.HolderName)
	p.Number = digitsOnly(p.Number)
	p.CCV = digitsOnly(p.CCV)
	p.ExpiryMonth = strings.TrimSpace(p.ExpiryMonth)
	p.ExpiryYear = strings.TrimSpace(p.ExpiryYear)
	return p
}

// Validate checks that every field is present and well-formed.
func (p PaymentInstrument) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Join(ErrInvalidInstrument, err)
	}
	if m := p.ExpiryMonth; m < "01" || m > "12" {
		return errors.Join(ErrInvalidInstrument, fmt.Errorf("%w: month %q", ErrInvalidExpiry, m))
	}
	return nil
}

// Masked returns the card number with all but the last four digits hidden.
func (p PaymentInstrument) Masked() string {
	n := digitsOnly(p.Number)
	if len(n) <= 4 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

// ParseExpiry splits a form expiry ("MM/YY" or "MM/YYYY") into a two-digit
// month and a four-digit year.
func ParseExpiry(s string) (month, year string, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}

	month = strings.TrimSpace(parts[0])
	year = strings.TrimSpace(parts[1])
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		year = "20" + year
	}

	if len(month) != 2 || len(year) != 4 || digitsOnly(month) != month || digitsOnly(year) != year {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}
	if month < "01" || month > "12" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}
	return month, year, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
