package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/ulak/internal/client/identity"
	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/client/routing"
	"github.com/dmitrijs2005/ulak/internal/common"
)

func (a *App) prompt(text string) (string, error) {
	return getSimpleText(a.reader, text, a.out)
}

// promptSecret reads a password and returns it as a string. The raw bytes
// are wiped.
func (a *App) promptSecret(text string) (string, error) {
	pw, err := getPassword(a.out, text)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func loginCommand(get appGetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in",
		Args:  cobra.NoArgs,
		RunE:  run(get, routing.PathLogin, (*App).login),
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	return cmd
}

func (a *App) login(ctx context.Context, cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		var err error
		if email, err = a.prompt("Enter email"); err != nil {
			return err
		}
	}
	password, err := a.promptSecret("Enter password")
	if err != nil {
		return err
	}

	if _, err := a.store.Login(ctx, strings.TrimSpace(email), password); err != nil {
		return err
	}

	st := a.store.State()
	a.printf("Logged in as %s\n", displayID(st.UserID))
	if st.MustChangePassword {
		a.println("You must change your password before continuing. Run 'passwd'.")
	}
	return nil
}

func logoutCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved login",
		Args:  cobra.NoArgs,
		RunE: run(get, "", func(a *App, ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := a.store.Logout(ctx); err != nil {
				return err
			}
			a.println("Logged out.")
			return nil
		}),
	}
}

func registerCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE:  run(get, routing.PathRegister, (*App).register),
	}
}

func (a *App) register(ctx context.Context, cmd *cobra.Command, args []string) error {
	var req models.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
		secret bool
	}{
		{"First name", &req.FirstName, false},
		{"Last name", &req.LastName, false},
		{"Email", &req.Email, false},
		{"Password", &req.Password, true},
		{"Repeat password", &req.PasswordConfirm, true},
		{"Security question", &req.SecurityQuestion, false},
		{"Security answer", &req.SecurityAnswer, false},
	}
	for _, f := range fields {
		var (
			v   string
			err error
		)
		if f.secret {
			v, err = a.promptSecret(f.prompt)
		} else {
			v, err = a.prompt(f.prompt)
		}
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if err := a.store.Register(ctx, req); err != nil {
		return err
	}
	a.println("Account created. Run 'login' to continue.")
	return nil
}

func forgotCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot",
		Short: "Reset a forgotten password with the security question",
		Args:  cobra.NoArgs,
		RunE:  run(get, routing.PathForgot, (*App).forgot),
	}
}

func (a *App) forgot(ctx context.Context, cmd *cobra.Command, args []string) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	question, err := a.store.ForgotQuestion(ctx, email)
	if err != nil {
		return err
	}
	answer, err := a.prompt(question)
	if err != nil {
		return err
	}
	newPassword, err := a.store.ForgotReset(ctx, email, answer)
	if err != nil {
		return err
	}

	a.printf("Your temporary password: %s\n", newPassword)
	a.println("Log in with it; you will be asked to set a new one.")
	return nil
}

func passwdCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE:  run(get, routing.PathSettings, (*App).passwd),
	}
}

func (a *App) passwd(ctx context.Context, cmd *cobra.Command, args []string) error {
	old, err := a.promptSecret("Current password")
	if err != nil {
		return err
	}
	newPassword, err := a.promptSecret("New password")
	if err != nil {
		return err
	}
	confirm, err := a.promptSecret("Repeat new password")
	if err != nil {
		return err
	}

	if err := a.store.ChangePassword(ctx, old, newPassword, confirm); err != nil {
		return err
	}
	a.println("Password changed.")
	return nil
}

func whoamiCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current login and server status",
		Args:  cobra.NoArgs,
		RunE:  run(get, "", (*App).whoami),
	}
}

func (a *App) whoami(ctx context.Context, cmd *cobra.Command, args []string) error {
	st := a.store.State()
	server := "reachable"
	if err := a.health.Ping(ctx); err != nil {
		server = userMessage(err)
	}
	a.printf("Server:   %s (%s)\n", a.config.ServerURL, server)

	if !st.Authenticated() {
		a.println("Not logged in.")
		return nil
	}

	a.printf("User ID:  %s\n", displayID(st.UserID))
	if exp, ok := identity.ExpiresAt(st.AccessToken); ok {
		note := ""
		if time.Now().After(exp) {
			note = " (expired, log in again)"
		}
		a.printf("Expires:  %s%s\n", exp.Local().Format(time.RFC1123), note)
	}
	if st.MustChangePassword {
		a.println("Password: must be changed, run 'passwd'")
	}
	return nil
}

func displayID(id string) string {
	if id == "" {
		return "(unknown)"
	}
	return id
}
