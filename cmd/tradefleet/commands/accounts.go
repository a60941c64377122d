package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// accounts: list the account ids present in the fleet config. Secrets are
// never printed.
func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, a := range cfg.Accounts {
				fmt.Println(a.AccountID)
			}
			return nil
		},
	}
}
