package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `taskclient login` first")

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession()
			if err != nil {
				return err
			}
			user, err := sess.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession()
			if err != nil {
				return err
			}
			if err := sess.Register(cmd.Context(), name, email, password); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. Please login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession()
			if err != nil {
				return err
			}
			sess.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession()
			if err != nil {
				return err
			}
			user, err := sess.Restore(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}
			if user == nil {
				return errNotLoggedIn
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
			if c := sess.Claims(); c != nil && !c.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Token expires %s\n", c.ExpiresAt.Local().Format("Jan 2, 2006 15:04"))
			}
			return nil
		},
	}
}
