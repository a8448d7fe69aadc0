package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/backend"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		return withBackend(cmd, func(b backend.Backend) error {
			res, err := b.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in as %s.\n", res.Name, res.Email)
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		return withBackend(cmd, func(b backend.Backend) error {
			res, err := b.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s).\n", res.Name, res.Email)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			if err := b.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			u, err := b.Me(cmd.Context())
			if errors.Is(err, account.ErrNotSignedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in. Run 'codepet login' or 'codepet signup'.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (user %d)\n", u.Name, u.Email, u.ID)
			return nil
		})
	},
}

func init() {
	signupCmd.Flags().String("name", "", "Display name")
	signupCmd.Flags().String("email", "", "Email address")
	signupCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
	signupCmd.MarkFlagRequired("name")
	signupCmd.MarkFlagRequired("email")

	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
	loginCmd.MarkFlagRequired("email")
}

// passwordFlag returns --password or the first line of stdin.
func passwordFlag(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
