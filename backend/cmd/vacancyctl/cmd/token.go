package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobvacancies/backend/internal/api/middleware"
)

func tokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for the write endpoints of the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			if !cmd.Flags().Changed("ttl") {
				ttl = a.cfg.JWTTTL
			}

			token, err := middleware.GenerateJWTToken(a.cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "vacancyctl", "Token subject (client name)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime (default: $JWT_TTL)")

	return cmd
}
