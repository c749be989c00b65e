package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.api.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := a.guard.SetToken(token); err != nil {
				return fmt.Errorf("failed to persist token: %w", err)
			}

			// Warm the session cache; best effort.
			if user, err := a.api.CurrentUser(cmd.Context()); err == nil {
				a.guard.CacheProfile(user)
				fmt.Printf("Logged in as %s\n", user.Email)
			} else {
				fmt.Println("Logged in")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}
