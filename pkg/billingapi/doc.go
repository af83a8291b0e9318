// Package billingapi is the HTTP client for the clinic billing backend.
//
// It covers the endpoints the checkout flow needs: plan listing, coupon
// lookup, subscription creation, the synced subscription status read, and
// the session refresh performed after activation. Successful bodies are
// wrapped in a {"data": ...} envelope; failures carry {"message": ...} and
// surface as *APIError, whose UserMessage is safe to show to the user.
//
//	client, err := billingapi.New(cfg.API.URL,
//	    billingapi.WithToken(cfg.API.Token),
//	    billingapi.WithLogger(log),
//	)
package billingapi
