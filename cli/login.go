package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/tpictl/auth"
	"github.com/kbukum/tpictl/errors"
)

func (a *App) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the BMC login",
	}
	cmd.AddCommand(a.loginCommand(), a.logoutCommand())
	return cmd
}

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and cache the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ta, err := a.tokenAuthenticator()
			if err != nil {
				return err
			}
			// Drop any cached token so the login really happens.
			if err := ta.Invalidate(); err != nil {
				a.log.Warn("failed to remove the cached token")
			}
			if _, err := ta.Token(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "logged in to %s\n", a.target.Host())
			return err
		},
	}
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ta, err := a.tokenAuthenticator()
			if err != nil {
				return err
			}
			if err := ta.Invalidate(); err != nil {
				return errors.Internal(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return err
		},
	}
}

func (a *App) tokenAuthenticator() (*auth.TokenAuthenticator, error) {
	ta, ok := a.auth.(*auth.TokenAuthenticator)
	if !ok {
		return nil, errors.InvalidInput("auth.mode", fmt.Sprintf("%s mode does not use a login", a.auth.Mode()))
	}
	return ta, nil
}
