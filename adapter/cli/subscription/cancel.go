package subscription

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/anandgupta07/coach-sub000/adapter/cli"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <subscription-id>",
	Short: "Cancel one of the user's active subscriptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Subscriptions == nil {
			return errors.New("cancellation requires database connection")
		}
		who, err := session()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subscription id: %w", err)
		}

		sub, err := app.Subscriptions.Cancel(cmd.Context(), who, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subscription %s cancelled.\n", sub.ID)
		return nil
	},
}
