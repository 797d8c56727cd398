package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"artwaves-catalog/models"
	"artwaves-catalog/utils"
)

func newTokenCmd() *cobra.Command {
	var (
		user   string
		role   string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT for the write endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := models.RolePermissions[role]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := utils.GenerateJWT(secret, user, role, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "operator", "User id placed in the token")
	cmd.Flags().StringVar(&role, "role", "customer", "Role (customer, admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", cfg.JWTSecret, "Signing secret (default from JWT_SECRET)")
	return cmd
}
