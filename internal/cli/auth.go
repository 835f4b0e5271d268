package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oggyb/spotme/internal/api"
)

func signUpCmd(c *Client) *cobra.Command {
	var req api.SignUpRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := c.Auth.SignUp(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if err := c.saveToken(resp.Token); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "signed up as %s\n", resp.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func signInCmd(c *Client) *cobra.Command {
	var req api.SignInRequest
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := c.Auth.SignIn(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if err := c.saveToken(resp.Token); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "signed in as %s\n", resp.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func signOutCmd(c *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := c.authed(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := c.Auth.SignOut(ctx, &api.Empty{}); err != nil {
				return err
			}
			if err := c.clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "signed out")
			return nil
		},
	}
}
