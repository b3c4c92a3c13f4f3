package cmd

import (
	"context"
	"fmt"

	"github.com/nfrund/livechat/internal/auth"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/spf13/cobra"
)

var password string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in with an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return signIn(cmd, auth.ModeLogin, args[0])
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return signIn(cmd, auth.ModeSignup, args[0])
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessionStore().Clear(); err != nil {
			return err
		}
		notifier(cmd).Notify(cmd.Context(), notify.Success("Logged out successfully"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, ok := sessionStore().Load()
		if !ok {
			return domain.ErrNoSession
		}
		fmt.Fprintln(cmd.OutOrStdout(), username)
		return nil
	},
}

func signIn(cmd *cobra.Command, mode auth.Mode, username string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	gateway, err := a.Gateway()
	if err != nil {
		return err
	}

	out := notifier(cmd)
	if _, err := gateway.SignIn(cmd.Context(), sessionStore(), mode, username, password); err != nil {
		out.Notify(cmd.Context(), notify.Error(domain.Describe(err, err.Error())))
		return errReported
	}
	out.Notify(cmd.Context(), notify.Success(mode.SuccessMessage()))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&password, "password", "p", "", "account password")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(logoutCmd, whoamiCmd)
}
