package subscription

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
)

var (
	userFlag string
	roleFlag string
)

// Cmd is the subscription command group.
var Cmd = &cobra.Command{
	Use:   "subscription",
	Short: "Inspect and manage client subscriptions",
	Long:  `Check access, progress and history for a user, or cancel a subscription on their behalf.`,
}

func init() {
	Cmd.PersistentFlags().StringVar(&userFlag, "user", "", "user ID to act as")
	Cmd.PersistentFlags().StringVar(&roleFlag, "role", string(identity.RoleClient), "role to act as (client or coach)")

	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(progressCmd)
	Cmd.AddCommand(historyCmd)
	Cmd.AddCommand(cancelCmd)
}

func session() (identity.Session, error) {
	if userFlag == "" {
		return identity.Session{}, fmt.Errorf("--user is required")
	}
	userID, err := uuid.Parse(userFlag)
	if err != nil {
		return identity.Session{}, fmt.Errorf("invalid --user: %w", err)
	}
	return identity.NewSession(userID, identity.Role(roleFlag))
}
