package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"insurance-portal/internal/session"
	"insurance-portal/internal/validate"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var form validate.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the insurance API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.New().Struct(form); err != nil {
				return err
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.sessions.Login(cmd.Context(), form.Request())
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s <%s> (%s)\n", displayName(s), s.User.Email, s.User.Role)
			fmt.Fprintln(out, expiryLine(s, time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s, _, err := a.current(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.sessions.Logout(cmd.Context(), s.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and when the token expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s, api, err := a.current(cmd.Context())
			if err != nil {
				return err
			}
			user := s.User
			if remote {
				u, err := api.CurrentUser(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to verify session: %w", err)
				}
				user = *u
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", displayName(&session.Session{User: user}), user.Email)
			fmt.Fprintf(out, "Role: %s\n", user.Role)
			fmt.Fprintln(out, expiryLine(s, time.Now()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the API for the current profile instead of the stored one")
	return cmd
}

func displayName(s *session.Session) string {
	if name := s.User.FullName(); name != "" {
		return name
	}
	return s.User.Email
}

func expiryLine(s *session.Session, now time.Time) string {
	if s.ExpiresAt.IsZero() {
		return "Token does not expire"
	}
	left := s.ExpiresAt.Sub(now).Round(time.Minute)
	return fmt.Sprintf("Token expires at %s (in %s)", s.ExpiresAt.Local().Format("2006-01-02 15:04"), left)
}
