package subscription

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anandgupta07/coach-sub000/adapter/cli"
)

const dateLayout = "Mon, 02 Jan 2006 15:04 MST"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a user has paid access",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Subscriptions == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Subscription status requires database connection.")
			return nil
		}
		who, err := session()
		if err != nil {
			return err
		}

		status, err := app.Subscriptions.CheckSubscription(cmd.Context(), who)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case status.Exempt:
			fmt.Fprintln(out, "Access: granted (coach)")
		case status.IsActive:
			fmt.Fprintln(out, "Access: granted")
		default:
			fmt.Fprintln(out, "Access: denied")
		}
		if status.Subscription != nil {
			sub := status.Subscription
			fmt.Fprintf(out, "Subscription: %s (%s)\n", sub.ID, sub.Status)
			fmt.Fprintf(out, "Ends: %s\n", sub.EndDate.Local().Format(dateLayout))
		}
		if status.Message != "" {
			fmt.Fprintf(out, "Message: %s\n", status.Message)
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the progress timeline of the active subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Subscriptions == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Subscription progress requires database connection.")
			return nil
		}
		who, err := session()
		if err != nil {
			return err
		}

		view, err := app.Subscriptions.Progress(cmd.Context(), who)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if view.Plan != nil {
			fmt.Fprintf(out, "Plan: %s\n", view.Plan.Name)
		}
		p := view.Progress
		fmt.Fprintf(out, "Progress: %d%% (day %d of %d, %d left)\n", p.Percent, p.CurrentDay, p.TotalDays, p.DaysRemaining)
		for _, m := range p.Milestones {
			marker := " "
			switch {
			case m.IsCurrent:
				marker = ">"
			case m.IsPassed:
				marker = "x"
			}
			fmt.Fprintf(out, "  [%s] %s\n", marker, m.Label)
		}
		fmt.Fprintf(out, "Ends: %s\n", view.Subscription.EndDate.Local().Format(dateLayout))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List every subscription a user has held",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Subscriptions == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Subscription history requires database connection.")
			return nil
		}
		who, err := session()
		if err != nil {
			return err
		}

		subs, err := app.Subscriptions.History(cmd.Context(), who.UserID)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No subscriptions found.")
			return nil
		}
		for _, sub := range subs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %s -> %s\n",
				sub.ID, sub.Status,
				sub.StartDate.Local().Format(time.DateOnly),
				sub.EndDate.Local().Format(time.DateOnly),
			)
		}
		return nil
	},
}
