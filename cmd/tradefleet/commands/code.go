package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tradefleet/confirm"
)

// code <account-id> <tag>: derive a confirmation code for manual follow-up on
// an offer left pending (e.g. after a surfaced confirmation error).
func codeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code <account-id> <tag>",
		Short: "Derive a confirmation code for an account",
		Long:  "Derives a time-bound confirmation code from the account's identity secret. Valid tags: conf, details, allow, cancel.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			account, err := cfg.Account(args[0])
			if err != nil {
				return err
			}

			tag := confirm.Tag(args[1])
			switch tag {
			case confirm.TagList, confirm.TagDetails, confirm.TagAccept, confirm.TagCancel:
			default:
				return fmt.Errorf("unknown tag %q (want conf, details, allow or cancel)", args[1])
			}

			now := time.Now().Unix()
			code, err := confirm.DeriveCode(account.IdentitySecret, now, tag)
			if err != nil {
				return err
			}
			fmt.Printf("timestamp=%d code=%s\n", now, code)
			return nil
		},
	}
}
