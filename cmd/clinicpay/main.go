package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "clinicpay",
		Short:         "Clinic subscription checkout client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load variables from this .env file")

	load := func() (*app, error) { return newApp(envFile) }

	cmd.AddCommand(plansCmd(load))
	cmd.AddCommand(quoteCmd(load))
	cmd.AddCommand(checkoutCmd(load))

	return cmd
}
