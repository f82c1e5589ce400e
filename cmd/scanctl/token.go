package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/config"
)

func newTokenCmd() *cobra.Command {
	var (
		userID  string
		role    string
		storeID string
		email   string
	)

	cmd := &cobra.Command{
		Use:   "token --user <id> [--role customer|store_admin]",
		Short: "Mint a bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := config.JWTSecret()
			if err != nil {
				return err
			}
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}

			token, err := auth.NewTokenManager(secret, ttl).GenerateToken(userID, email, role, storeID)
			if err != nil {
				return withExitCode(exitInvalid, "%w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id carried in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleCustomer, "customer or store_admin")
	cmd.Flags().StringVar(&storeID, "store", "", "store id of a store admin")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().Duration("ttl", 0, "token lifetime (default 24h)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
