package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/enterprise/strength-service/configs"
	"github.com/enterprise/strength-service/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var subject, name, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator JWT",
		Long: `Issue an operator JWT for the /api/v1/stats endpoints, signed with
JWT_SECRET and JWT_ISSUER from the environment (or .env).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role != auth.RoleAdmin && role != auth.RoleAnalyst {
				return fmt.Errorf("unknown role %q (want %s or %s)", role, auth.RoleAdmin, auth.RoleAnalyst)
			}

			operatorID := uuid.New()
			if subject != "" {
				parsed, err := uuid.Parse(subject)
				if err != nil {
					return fmt.Errorf("invalid subject: %w", err)
				}
				operatorID = parsed
			}

			cfg := configs.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			manager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
			token, err := manager.GenerateToken(operatorID, name, role)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "operator %s, role %s, expires in %s\n", operatorID, role, manager.Expiration())
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "operator UUID (random when empty)")
	cmd.Flags().StringVar(&name, "name", "operator", "operator display name")
	cmd.Flags().StringVar(&role, "role", auth.RoleAnalyst, "operator role (admin or analyst)")
	return cmd
}
