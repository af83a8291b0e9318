// Package config loads clinicpay configuration from the environment.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// an optional `.env` file is merged into the process environment and the
// result is parsed into Config by field tags, then validated.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Variables
//
//   - CLINIC_API_URL (required), CLINIC_API_TOKEN, CLINIC_API_TIMEOUT,
//     CLINIC_SESSION_REFRESH_PATH
//   - CHECKOUT_POLL_ATTEMPTS (3), CHECKOUT_POLL_INTERVAL (5s),
//     CHECKOUT_CURRENCY (BRL), CHECKOUT_LOCALE (pt-BR)
//   - CHECKOUT_GUARD (memory|redis), CHECKOUT_GUARD_TTL (2m), CHECKOUT_GUARD_KEY
//   - APP_ENV, LOG_LEVEL
//   - REDIS_* as described by redis.Config
//
// # Errors
//
//   - `ErrLoadingEnvFile` – an explicitly passed .env file could not be read.
//   - `ErrParsingConfig`  – env vars could not be parsed, or a required one is missing.
//   - `ErrInvalidConfig`  – a parsed value is out of range.
package config
