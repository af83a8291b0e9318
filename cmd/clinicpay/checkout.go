package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/clinickit/pkg/activation"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

func checkoutCmd(load func() (*app, error)) *cobra.Command {
	var (
		planID string
		coupon string
		expiry string
		card   subscription.PaymentInstrument
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Subscribe to a plan with a credit card and wait for activation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			card.ExpiryMonth, card.ExpiryYear, err = subscription.ParseExpiry(expiry)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			catalog, err := a.catalog(ctx)
			if err != nil {
				return err
			}
			plan, err := catalog.Get(planID)
			if err != nil {
				return fmt.Errorf("%w: %s", err, planID)
			}

			g, closeGuard, err := a.submissionGuard(ctx)
			if err != nil {
				return err
			}
			defer closeGuard()

			var (
				mu   sync.Mutex
				last string
			)
			o := a.orchestrator(g, activation.WithProgressHandler(func(p activation.Progress) {
				mu.Lock()
				defer mu.Unlock()
				if p.StatusMessage != "" && p.StatusMessage != last {
					last = p.StatusMessage
					fmt.Println(p.StatusMessage)
				}
			}))
			defer o.Close()

			o.SelectPlan(plan)
			if coupon != "" {
				d, err := o.ApplyCoupon(ctx, coupon)
				if err != nil {
					return errors.New(o.Describe(err))
				}
				fmt.Printf("%s → %s\n", a.money(plan.Price), a.money(d.FinalPrice))
			}

			if err := o.Submit(ctx, card); err != nil {
				return errors.New(o.Describe(err))
			}

			waitCtx, cancel := context.WithTimeout(ctx, a.waitBudget())
			defer cancel()
			res, err := o.Wait(waitCtx)
			if errors.Is(err, activation.ErrNoCheckout) {
				return errors.New("another checkout is already in progress for this account")
			}
			if err != nil {
				return err
			}
			if res.Outcome != activation.OutcomeActive {
				return fmt.Errorf("checkout %s: %s", res.Outcome, res.Message)
			}
			fmt.Printf("subscription %s is active\n", res.SubscriptionRef)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&planID, "plan", "p", "", "Plan ID")
	f.StringVarP(&coupon, "coupon", "c", "", "Coupon code")
	f.StringVar(&card.HolderName, "holder", "", "Card holder name")
	f.StringVar(&card.Number, "number", "", "Card number")
	f.StringVar(&expiry, "expiry", "", "Card expiry as MM/YY or MM/YYYY")
	f.StringVar(&card.CCV, "ccv", "", "Card security code")
	for _, name := range []string{"plan", "holder", "number", "expiry", "ccv"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
