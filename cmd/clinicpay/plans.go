package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func plansCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List available subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			catalog, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLAN\tPRICE\tWAS\tFEATURES")
			for _, p := range catalog.Plans() {
				was := "-"
				if p.HasPromotion() {
					was = a.money(*p.OriginalPrice)
				}
				name := p.Name
				if p.Badge != "" {
					name += " [" + p.Badge + "]"
				}
				if p.Highlighted {
					name = "* " + name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, name, a.money(p.Price), was, strings.Join(p.Features, ", "))
			}
			return w.Flush()
		},
	}
}
