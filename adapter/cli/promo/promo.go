package promo

import "github.com/spf13/cobra"

// Cmd is the promo code command group.
var Cmd = &cobra.Command{
	Use:   "promo",
	Short: "Manage promo codes",
	Long:  `Create, list, price and redeem promo codes.`,
}

func init() {
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(applyCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
}
