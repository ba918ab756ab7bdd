package promo

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/anandgupta07/coach-sub000/adapter/cli"
)

var validateTotal string

var validateCmd = &cobra.Command{
	Use:   "validate <code>",
	Short: "Price a cart total with a promo code without redeeming it",
	Long: `Price a cart total with a promo code. No use is consumed.

Examples:
  portal promo validate SAVE10 --total 1799`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Promotions == nil {
			return errors.New("promo validation requires database connection")
		}
		total, err := decimal.NewFromString(validateTotal)
		if err != nil {
			return fmt.Errorf("invalid --total: %w", err)
		}

		quote, err := app.Promotions.Validate(cmd.Context(), args[0], total)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Code: %s (%s %s)\n", quote.PromoCode, quote.DiscountType, quote.DiscountValue)
		fmt.Fprintf(out, "Cart total: %s\n", quote.CartTotal.StringFixed(2))
		fmt.Fprintf(out, "Discount:   %s\n", quote.DiscountAmount.StringFixed(2))
		fmt.Fprintf(out, "Final:      %s\n", quote.FinalAmount.StringFixed(2))
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Redeem one use of a promo code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Promotions == nil {
			return errors.New("promo redemption requires database connection")
		}

		promo, err := app.Promotions.Apply(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Redeemed %s: %d of %d uses consumed, %d left.\n",
			promo.Code, promo.UsageCount, promo.UsageLimit, promo.RemainingUses())
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateTotal, "total", "", "cart total to price")
	_ = validateCmd.MarkFlagRequired("total")
}
