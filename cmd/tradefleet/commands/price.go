package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tradefleet/pricing"
	"github.com/hupe1980/tradefleet/webapi"
)

// price <owner-id> <app-id>: price the public inventory of an account.
func priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <owner-id> <app-id>",
		Short: "Price the public inventory of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			appID, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid app id %q: %w", args[1], err)
			}

			client := webapi.NewClient(func(o *webapi.Options) {
				if cfg.CommunityBaseURL != "" {
					o.BaseURL = cfg.CommunityBaseURL
				}
			})
			aggregator := pricing.NewAggregator(client, func(o *pricing.Options) {
				o.Markup = cfg.Pricing.Markup
				o.Currency = cfg.Pricing.Currency
				o.MaxConcurrent = cfg.Pricing.MaxConcurrent
			})

			priced, err := aggregator.PriceAccountInventory(cmd.Context(), args[0], uint32(appID))
			if err != nil {
				return err
			}
			for _, p := range priced {
				fmt.Printf("%.2f\t%s\n", p.Price, p.Name)
			}
			return nil
		},
	}
}
