package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/authz"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("AIVODRIVE_PASSWORD")
			}
			if password == "" {
				p, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			creds := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
			if err := a.session.Login(cmd.Context(), creds); err != nil {
				return err
			}
			user, _ := a.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or AIVODRIVE_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and the sections they can open",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), authz.PathDashboard); err != nil {
				return err
			}
			state := a.session.Current()
			out := cmd.OutOrStdout()
			u := state.User
			fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
			fmt.Fprintf(out, "Role:    %s\n", roleLabel(u.Role))
			if u.DriverID != "" {
				fmt.Fprintf(out, "Driver:  %s\n", u.DriverID)
			}
			fmt.Fprintf(out, "Expires: %s\n", state.Expiry.Local().Format("2006-01-02 15:04"))
			fmt.Fprintln(out, "Sections:")
			for _, item := range authz.Navigation(u.Role) {
				fmt.Fprintf(out, "  %-14s %s\n", item.Label, item.Path)
			}
			return nil
		},
	}
}

func profileCmd(a *app) *cobra.Command {
	var in models.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your name, email or phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/profile"); err != nil {
				return err
			}
			u, err := a.session.UpdateProfile(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile saved: %s <%s> %s\n", u.Name, u.Email, u.Phone)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number in E.164 form")
	return cmd
}

func passwdCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/settings"); err != nil {
				return err
			}
			in := bufio.NewReader(cmd.InOrStdin())
			current, err := prompt(in, cmd.ErrOrStderr(), "Current password: ")
			if err != nil {
				return err
			}
			next, err := prompt(in, cmd.ErrOrStderr(), "New password: ")
			if err != nil {
				return err
			}
			change := validation.PasswordChange{CurrentPassword: current, NewPassword: next}
			if err := validation.Struct(change); err != nil {
				return err
			}
			if err := a.auth.ChangePassword(cmd.Context(), change); err != nil {
				a.session.HandleError(err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}
}

// prompt reads one line from in. Input is not masked.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
