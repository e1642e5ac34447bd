package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/floradex/billing/internal/interfaces/cli/migrate"
	"github.com/floradex/billing/internal/interfaces/cli/server"
	"github.com/floradex/billing/internal/interfaces/cli/token"
	"github.com/floradex/billing/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "billing",
		Short:   "Billing - multi-gateway payment service",
		Long:    `Billing routes checkouts to Razorpay, Cashfree, PayPal, Stripe and Midtrans, processes their webhooks and administers the gateway registry.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
