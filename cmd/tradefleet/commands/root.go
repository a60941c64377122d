package commands

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/tradefleet/config"
)

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tradefleet",
		Short:         "Operate a fleet of automated trading accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fleet.yaml", "path to the fleet configuration file")

	cmd.AddCommand(accountsCmd())
	cmd.AddCommand(priceCmd())
	cmd.AddCommand(codeCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd().Execute()
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
