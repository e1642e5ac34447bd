// Package token mints admin bearer tokens for operators.
package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/floradex/billing/internal/infrastructure/auth"
	"github.com/floradex/billing/internal/infrastructure/config"
	"github.com/floradex/billing/internal/shared/authorization"
)

var (
	env        string
	configPath string
	actorID    uint
	role       string
	ttl        time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin API token",
		Long:  `Sign a JWT for the admin API with the configured secret and print it to stdout.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().UintVar(&actorID, "actor-id", 0, "Numeric ID recorded as last_configured_by on gateway changes (required)")
	cmd.Flags().StringVar(&role, "role", string(authorization.RoleAdmin), "Role claim (admin, super_admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.jwt.access_exp_minutes)")
	_ = cmd.MarkFlagRequired("actor-id")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	userRole := authorization.UserRole(role)
	if !userRole.IsAdmin() {
		return fmt.Errorf("role %q cannot call the admin API", role)
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	signed, expiresAt, err := svc.Generate(actorID, userRole, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
