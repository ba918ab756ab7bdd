package promo

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/anandgupta07/coach-sub000/adapter/cli"
	promotions "github.com/anandgupta07/coach-sub000/internal/promotions/domain"
)

var (
	createCode    string
	createType    string
	createValue   string
	createLimit   int
	createMinCart string
	createExpires string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a promo code",
	Long: `Create a promo code.

Examples:
  portal promo create --code SAVE10 --type percentage --value 10 --limit 100
  portal promo create --code BIG500 --type fixed --value 500 --limit 20 --min-cart 3000 --expires 2026-12-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Promotions == nil {
			return errors.New("promo creation requires database connection")
		}

		params, err := createParams()
		if err != nil {
			return err
		}
		promo, err := app.Promotions.Create(cmd.Context(), params)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Promo code created: %s\n", promo.Code)
		return nil
	},
}

func createParams() (promotions.NewPromoCodeParams, error) {
	value, err := decimal.NewFromString(createValue)
	if err != nil {
		return promotions.NewPromoCodeParams{}, fmt.Errorf("invalid --value: %w", err)
	}
	params := promotions.NewPromoCodeParams{
		Code:          createCode,
		DiscountType:  promotions.DiscountType(createType),
		DiscountValue: value,
		UsageLimit:    createLimit,
	}

	if createMinCart != "" {
		minCart, err := decimal.NewFromString(createMinCart)
		if err != nil {
			return promotions.NewPromoCodeParams{}, fmt.Errorf("invalid --min-cart: %w", err)
		}
		params.MinCartValue = &minCart
	}
	if createExpires != "" {
		expires, err := parseExpiry(createExpires)
		if err != nil {
			return promotions.NewPromoCodeParams{}, err
		}
		params.ExpiresAt = &expires
	}
	return params, nil
}

// parseExpiry accepts RFC 3339 or a bare date, which expires at the end of that UTC day.
func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --expires %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return d.Add(24*time.Hour - time.Second), nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List promo codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Promotions == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Promo codes require database connection.")
			return nil
		}

		promos, err := app.Promotions.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(promos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No promo codes.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tTYPE\tVALUE\tUSED\tMIN CART\tEXPIRES")
		for _, p := range promos {
			minCart, expires := "-", "-"
			if p.MinCartValue != nil {
				minCart = p.MinCartValue.StringFixed(2)
			}
			if p.ExpiresAt != nil {
				expires = p.ExpiresAt.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n", p.Code, p.DiscountType, p.DiscountValue, p.UsageCount, p.UsageLimit, minCart, expires)
		}
		return w.Flush()
	},
}

func init() {
	createCmd.Flags().StringVar(&createCode, "code", "", "promo code (A-Z, 0-9, _ and -)")
	createCmd.Flags().StringVar(&createType, "type", string(promotions.DiscountPercentage), "percentage or fixed")
	createCmd.Flags().StringVar(&createValue, "value", "", "discount value")
	createCmd.Flags().IntVar(&createLimit, "limit", 1, "maximum number of uses")
	createCmd.Flags().StringVar(&createMinCart, "min-cart", "", "minimum cart total")
	createCmd.Flags().StringVar(&createExpires, "expires", "", "expiry (YYYY-MM-DD or RFC 3339)")
	_ = createCmd.MarkFlagRequired("code")
	_ = createCmd.MarkFlagRequired("value")
}
