// ABOUTME: login, logout, and whoami commands
// ABOUTME: Login prompts with huh and only persists sessions for admin accounts

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/session"
)

var (
	errNotAdmin    = errors.New("you do not have admin access")
	errNotLoggedIn = errors.New("not logged in: run `bearound-admin login`")
)

func promptCredentials(email string) (string, string, error) {
	var password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("email is required")
				}
				return nil
			}),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password),
	))
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.onLogin = true
			if email == "" || password == "" {
				var err error
				email, password, err = a.prompt(email)
				if err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			res, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				switch apiclient.Classify(err) {
				case apiclient.AuthExpired, apiclient.ValidationFailed:
					if re, ok := apiclient.AsResponse(err); ok {
						return errors.New(re.Summary("Login failed"))
					}
				}
				return fmt.Errorf("login failed: %w", err)
			}
			if !res.Success || res.Result.Tokens.AccessToken == "" {
				msg := res.Message
				if msg == "" {
					msg = "Login failed"
				}
				return errors.New(msg)
			}

			user := res.Result.User
			if user.Role != session.AdminRole {
				return errNotAdmin
			}
			if err := a.session.SetAuth(cmd.Context(), user, res.Result.Tokens.AccessToken); err != nil {
				return err
			}
			a.success("Login successful!")
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", displayName(user), user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			a.success("Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.session.Snapshot()
			if !s.IsAuthenticated || !s.Valid() {
				return errNotLoggedIn
			}
			w := newTable(a.out)
			row(w, "User", displayName(*s.User))
			row(w, "Email", s.User.Email)
			row(w, "Role", s.User.Role)
			row(w, "API", a.cfg.APIURL)
			return w.Flush()
		},
	}
}

// requireSession stops a command early when nobody is signed in.
func (a *app) requireSession() error {
	if !a.session.Snapshot().IsAdmin() {
		return errNotLoggedIn
	}
	return nil
}

func displayName(u session.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
