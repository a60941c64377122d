package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/tradefleet/cmd/tradefleet/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
