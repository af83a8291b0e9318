package billingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/clinickit/pkg/logger"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultSessionPath = "/auth/me"

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// Client talks to the clinic billing backend.
// It implements subscription.CouponSource and subscription.Creator.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	timeout     time.Duration
	token       string
	sessionPath string
	userAgent   string
	logger      *slog.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:     u,
		timeout:     DefaultTimeout,
		sessionPath: DefaultSessionPath,
		userAgent:   "clinickit",
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// ListPlans returns the plan catalog in server order.
func (c *Client) ListPlans(ctx context.Context) ([]subscription.Plan, error) {
	var dtos []planDTO
	if err := c.do(ctx, http.MethodGet, "/planos", nil, nil, nil, &dtos); err != nil {
		return nil, err
	}
	plans := make([]subscription.Plan, 0, len(dtos))
	for _, d := range dtos {
		plans = append(plans, d.toPlan())
	}
	return plans, nil
}

// CouponByName looks a coupon up by its code. An unknown code yields
// subscription.ErrCouponNotFound.
func (c *Client) CouponByName(ctx context.Context, code string) (*subscription.Coupon, error) {
	var dto couponDTO
	err := c.do(ctx, http.MethodGet, "/cupons/name/"+url.PathEscape(code), nil, nil, nil, &dto)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.Join(subscription.ErrCouponNotFound, err)
		}
		return nil, err
	}
	name := dto.Name
	if name == "" {
		name = code
	}
	return &subscription.Coupon{
		Code:          subscription.NormalizeCouponCode(name),
		Active:        dto.Active,
		DiscountValue: dto.DiscountValue,
	}, nil
}

// CreateSubscription posts a credit card subscription and returns the new
// subscription reference.
func (c *Client) CreateSubscription(ctx context.Context, req subscription.CreateRequest) (subscription.Ref, error) {
	body := createSubscriptionDTO{
		PlanID:               planRef(req.PlanID),
		BillingType:          req.BillingType,
		CreditCardHolderName: req.HolderName,
		CreditCardNumber:     req.CardNumber,
		CreditCardExpiryMon:  req.ExpiryMonth,
		CreditCardExpiryYear: req.ExpiryYear,
		CreditCardCcv:        req.CCV,
		CouponName:           req.CouponName,
	}
	if body.BillingType == "" {
		body.BillingType = subscription.BillingTypeCreditCard
	}

	var headers http.Header
	if req.IdempotencyKey != "" {
		headers = http.Header{"Idempotency-Key": []string{req.IdempotencyKey}}
	}

	var out subscriptionDTO
	if err := c.do(ctx, http.MethodPost, "/assinaturas/simple", nil, body, headers, &out); err != nil {
		return "", err
	}
	return subscription.Ref(out.ID), nil
}

// CurrentSubscription fetches the caller's subscription, asking the backend
// to sync with the processor first. A caller without a subscription gets an
// empty, inactive value.
func (c *Client) CurrentSubscription(ctx context.Context) (*subscription.Subscription, error) {
	var out *subscriptionDTO
	err := c.do(ctx, http.MethodGet, "/assinaturas/minha", url.Values{"sync": []string{"true"}}, nil, nil, &out)
	if err != nil {
		if IsNotFound(err) {
			return &subscription.Subscription{}, nil
		}
		return nil, err
	}
	if out == nil {
		return &subscription.Subscription{}, nil
	}
	return &subscription.Subscription{
		ID:     subscription.Ref(out.ID),
		PlanID: string(out.PlanID),
		Status: subscription.Status(strings.ToUpper(string(out.Status))),
	}, nil
}

// RefreshSession re-reads the caller's session so entitlement changes made
// by the processor become visible. The response body is ignored.
func (c *Client) RefreshSession(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.sessionPath, nil, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any, headers http.Header, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Join(ErrEncodeRequest, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "billing request failed",
			slog.String("method", method),
			slog.String("path", path),
			logger.Error(err),
		)
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "billing request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return decodeData(raw, out)
}

// decodeData unwraps a {"data": ...} envelope when present and decodes the
// payload into out. Bodies without an envelope are decoded as-is.
func decodeData(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ErrMissingResource
	}
	payload := raw
	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
			payload = env.Data
		}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
