package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/clinickit/pkg/activation"
	"github.com/dmitrymomot/clinickit/pkg/billingapi"
	"github.com/dmitrymomot/clinickit/pkg/config"
	"github.com/dmitrymomot/clinickit/pkg/discount"
	"github.com/dmitrymomot/clinickit/pkg/guard"
	"github.com/dmitrymomot/clinickit/pkg/logger"
	"github.com/dmitrymomot/clinickit/pkg/messages"
	"github.com/dmitrymomot/clinickit/pkg/redis"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg  config.Config
	log  *slog.Logger
	api  *billingapi.Client
	calc discount.Calculator
	lang language.Tag
	msgs *messages.Catalog
}

func newApp(envFile string) (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, "clinicpay"),
		logger.WithOutput(os.Stderr),
	}
	if cfg.LogLevel != "" {
		lvl, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logOpts = append(logOpts, logger.WithLevel(lvl))
	}
	log := logger.New(logOpts...)

	unit, err := cfg.Checkout.CurrencyUnit()
	if err != nil {
		return nil, err
	}
	lang, err := cfg.Checkout.Language()
	if err != nil {
		return nil, err
	}
	msgs, err := messages.New(lang.String())
	if err != nil {
		log.Warn("no messages for locale, using default", slog.String("locale", lang.String()))
		msgs = messages.MustNew(messages.DefaultLanguage)
	}

	api, err := billingapi.New(cfg.API.URL,
		billingapi.WithToken(cfg.API.Token),
		billingapi.WithTimeout(cfg.API.Timeout),
		billingapi.WithSessionPath(cfg.API.SessionRefreshPath),
		billingapi.WithUserAgent("clinicpay/"+Version),
		billingapi.WithLogger(log.With(logger.Component("billingapi"))),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:  cfg,
		log:  log,
		api:  api,
		calc: discount.NewCalculator(unit),
		lang: lang,
		msgs: msgs,
	}, nil
}

// catalog fetches the plan list.
func (a *app) catalog(ctx context.Context) (*subscription.Catalog, error) {
	plans, err := a.api.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return subscription.NewCatalog(plans...), nil
}

// submissionGuard builds the configured guard. The returned cleanup closes
// any connection it opened.
func (a *app) submissionGuard(ctx context.Context) (guard.Guard, func(), error) {
	if a.cfg.Checkout.Guard != config.GuardRedis {
		return guard.NewMemory(), func() {}, nil
	}
	client, err := redis.Connect(ctx, a.cfg.Redis, a.log.With(logger.Component("redis")))
	if err != nil {
		return nil, nil, err
	}
	g := guard.NewRedis(client,
		guard.WithPrefix(a.cfg.Redis.KeyPrefix+"checkout:"),
		guard.WithTTL(a.cfg.Checkout.GuardTTL),
	)
	return g, func() { _ = client.Close() }, nil
}

// orchestrator wires a checkout orchestrator on top of the billing API.
func (a *app) orchestrator(g guard.Guard, opts ...activation.Option) *activation.Orchestrator {
	poller := activation.NewPoller(a.api,
		activation.WithMaxAttempts(a.cfg.Checkout.PollAttempts),
		activation.WithInterval(a.cfg.Checkout.PollInterval),
		activation.WithPollerLogger(a.log.With(logger.Component("poller"))),
	)
	base := []activation.Option{
		activation.WithCalculator(a.calc),
		activation.WithMessages(a.msgs),
		activation.WithLogger(a.log),
		activation.WithSessionRefresher(a.api.RefreshSession),
	}
	if g != nil {
		base = append(base, activation.WithGuard(g, a.cfg.Checkout.GuardKey))
	}
	return activation.New(
		subscription.NewCouponValidator(a.api, subscription.WithCouponLogger(a.log)),
		subscription.NewSubmitter(a.api, subscription.WithSubmitterLogger(a.log)),
		poller,
		append(base, opts...)...,
	)
}

// money formats an amount in the configured currency and locale.
func (a *app) money(v decimal.Decimal) string {
	return a.calc.Format(v, a.lang)
}

// waitBudget bounds how long checkout waits for an outcome.
func (a *app) waitBudget() time.Duration {
	c := a.cfg.Checkout
	return a.cfg.API.Timeout + time.Duration(c.PollAttempts)*(c.PollInterval+a.cfg.API.Timeout)
}
