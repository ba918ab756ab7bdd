package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plan catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Subscriptions == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Plan catalog requires database connection.")
			return nil
		}

		plans, err := app.Subscriptions.ListPlans(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tDAYS\tFEATURES")
		for _, p := range plans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.DurationDays, strings.Join(p.Features, ", "))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
}
