package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func quoteCmd(load func() (*app, error)) *cobra.Command {
	var planID, coupon string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show the price of a plan with an optional coupon",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := catalog.Get(planID)
			if err != nil {
				return fmt.Errorf("%w: %s", err, planID)
			}

			o := a.orchestrator(nil)
			defer o.Close()

			d := o.SelectPlan(plan)
			if coupon != "" {
				d, err = o.ApplyCoupon(cmd.Context(), coupon)
				if err != nil {
					return errors.New(o.Describe(err))
				}
			}

			fmt.Printf("Plan:     %s\n", plan.Name)
			fmt.Printf("Price:    %s\n", a.money(plan.Price))
			if !d.IsZero() {
				fmt.Printf("Discount: -%s (%s%%)\n", a.money(d.Amount), d.Percent.String())
			}
			fmt.Printf("Total:    %s\n", a.money(d.FinalPrice))
			return nil
		},
	}

	cmd.Flags().StringVarP(&planID, "plan", "p", "", "Plan ID")
	cmd.Flags().StringVarP(&coupon, "coupon", "c", "", "Coupon code")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}
