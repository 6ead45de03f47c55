package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/hearthstone-labs/crm/internal/config"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenEmail   string
	tokenRoles   []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed bearer token",
	Long: `Prints an HS256 token signed with the configured jwt secret. Intended for local
development and smoke tests against a server running in jwt auth mode.`,
	Example: `  crmapi token --subject alice --role agent
  crmapi token --subject root --role agent,admin --ttl 15m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.Mode != config.AuthModeJWT {
			return errors.New("token requires auth mode \"jwt\"")
		}

		var roles []string
		for _, r := range tokenRoles {
			roles = append(roles, auth.ParseRoles(r)...)
		}

		token, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), auth.TokenRequest{
			Subject:  tokenSubject,
			Email:    tokenEmail,
			Roles:    roles,
			Issuer:   cfg.Auth.JWTIssuer,
			Audience: cfg.Auth.JWTAudience,
			TTL:      tokenTTL,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject; becomes the owner of created records")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Optional email claim")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "role", nil, "Role to grant (repeatable or comma separated)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(tokenCmd)
}
