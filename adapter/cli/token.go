package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	Long: `Issue an HS256 bearer token signed with JWT_SECRET.

Production tokens come from the auth provider; this is for local development.

Examples:
  portal token --role coach
  portal token --user 0b8f... --role client --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Tokens == nil {
			return errors.New("token signing requires configuration")
		}

		userID := uuid.New()
		if tokenUser != "" {
			parsed, err := uuid.Parse(tokenUser)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			userID = parsed
		}

		session, err := identity.NewSession(userID, identity.Role(tokenRole))
		if err != nil {
			return fmt.Errorf("invalid --role %q: %w", tokenRole, err)
		}

		token, err := app.Tokens.Sign(session, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user:  %s\nrole:  %s\ntoken: %s\n", session.UserID, session.Role, token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user ID (random when empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(identity.RoleClient), "client or coach")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
