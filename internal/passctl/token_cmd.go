package passctl

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "gatepass/internal/jwt_token"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/redis"
	id "gatepass/pkg/domain"
)

// Signing settings come from the same environment variables as the server.

func jwtFromEnv(ttl time.Duration) (*jwttoken.JWTService, config.Server, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, config.Server{}, err
	}
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}
	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, ttl)
	svc.SetEnv(cfg.Env)
	return svc, cfg, nil
}

type tokenResponse struct {
	Token     string `json:"token"`
	Caller    string `json:"caller"`
	JTI       string `json:"jti"`
	ExpiresIn string `json:"expires_in"`
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Sign a bearer token for an account with the server's JWT settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := id.RequireAddress(args[0], "address")
			if err != nil {
				return err
			}
			svc, _, err := jwtFromEnv(ttl)
			if err != nil {
				return err
			}
			token, jti, err := svc.GenerateCallerToken(cmd.Context(), caller)
			if err != nil {
				return err
			}
			resp := &tokenResponse{Token: token, Caller: caller.Hex(), JTI: jti, ExpiresIn: svc.TTL().String()}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to CALLER_TOKEN_TTL)")

	return cmd
}

func newRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a bearer token until it expires",
		Long:  "Revoke a bearer token by recording its ID in Redis. Requires REDIS_URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := jwtFromEnv(0)
			if err != nil {
				return err
			}
			claims, err := svc.ParseTokenSkipClaimsValidation(args[0])
			if err != nil {
				return err
			}
			if claims.ExpiresAt == nil {
				return errors.New("token has no expiry")
			}

			client, err := redis.New(cmd.Context(), cfg.Redis)
			if err != nil {
				return err
			}
			if client == nil {
				return errors.New("REDIS_URL is required to revoke tokens")
			}
			defer func() { _ = client.Close() }()

			if err := jwttoken.NewRevocationList(client.Client).Revoke(cmd.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				return err
			}
			return render(cmd, map[string]string{"jti": claims.ID, "status": "revoked"},
				field{"JTI", claims.ID},
				field{"STATUS", "revoked"},
			)
		},
	}
}
