package billingapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

// envelope is the {"data": ...} wrapper used by most endpoints.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// flexID accepts identifiers encoded either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// planRef is sent as a JSON number when the ID is a plain integer, as the
// backend keys plans numerically, and as a string otherwise.
type planRef string

func (p planRef) MarshalJSON() ([]byte, error) {
	s := string(p)
	if isCanonicalInt(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func isCanonicalInt(s string) bool {
	if s == "" || len(s) > 18 || (len(s) > 1 && s[0] == '0') {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

type planDTO struct {
	ID            flexID           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Features      []string         `json:"features"`
	Badge         string           `json:"badge"`
	Highlighted   bool             `json:"highlighted"`
}

func (p planDTO) toPlan() subscription.Plan {
	return subscription.Plan{
		ID:            string(p.ID),
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Features:      p.Features,
		Badge:         p.Badge,
		Highlighted:   p.Highlighted,
	}
}

type couponDTO struct {
	Name          string          `json:"name"`
	Active        bool            `json:"active"`
	DiscountValue decimal.Decimal `json:"discountValue"`
}

type createSubscriptionDTO struct {
	PlanID               planRef                  `json:"planoId"`
	BillingType          subscription.BillingType `json:"billingType"`
	CreditCardHolderName string                   `json:"creditCardHolderName"`
	CreditCardNumber     string                   `json:"creditCardNumber"`
	CreditCardExpiryMon  string                   `json:"creditCardExpiryMonth"`
	CreditCardExpiryYear string                   `json:"creditCardExpiryYear"`
	CreditCardCcv        string                   `json:"creditCardCcv"`
	CouponName           string                   `json:"couponName,omitempty"`
}

type subscriptionDTO struct {
	ID     flexID              `json:"id"`
	PlanID flexID              `json:"planoId"`
	Status subscription.Status `json:"status"`
}
