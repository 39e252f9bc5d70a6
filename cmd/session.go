package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/session"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/utils"
	"github.com/worksdev/portal/internal/workflows"
)

var (
	sessionEmail         string
	sessionPasswordStdin bool
	sessionCode          string
	sessionForgetDevice  bool

	SessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Log in and out of the portal",
	}
)

func init() {
	sessionLoginCmd.Flags().StringVarP(&sessionEmail, "email", "e", "", "account email")
	sessionLoginCmd.Flags().BoolVar(&sessionPasswordStdin, "password-stdin", false, "read the password from stdin")
	sessionLoginCmd.Flags().StringVar(&sessionCode, "code", "", "verification code, when already known")
	_ = sessionLoginCmd.MarkFlagRequired("email")

	sessionLogoutCmd.Flags().BoolVar(&sessionForgetDevice, "forget-device", false, "also remove this device's private key")

	SessionCmd.AddCommand(sessionLoginCmd)
	SessionCmd.AddCommand(sessionVerifyCmd)
	SessionCmd.AddCommand(sessionResendCmd)
	SessionCmd.AddCommand(sessionLogoutCmd)
	SessionCmd.AddCommand(sessionWhoamiCmd)
}

func resetSessionState() {
	sessionEmail = ""
	sessionPasswordStdin = false
	sessionCode = ""
	sessionForgetDevice = false
}

func readPassword() (string, error) {
	if sessionPasswordStdin {
		data, err := utils.ReadStdin()
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return utils.ReadPassword("Password: ")
}

func readCode() (string, error) {
	if sessionCode != "" {
		return sessionCode, nil
	}
	if !utils.IsTerminal() {
		return "", fmt.Errorf("no verification code given (hint: use --code or run %s)", "portal session verify")
	}
	fmt.Fprint(os.Stderr, "Verification code: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read verification code: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// announceSessionChanges prints the session user each time it changes and
// returns the function that stops it.
func announceSessionChanges(cmd *cobra.Command, a *app.App) func() {
	return a.Session.Changes().Subscribe(func(user session.User) {
		out := cmd.OutOrStdout()
		if !user.Role.Valid() {
			fmt.Fprintln(out, ui.Success.Sprint("✓")+" Logged out")
			return
		}
		fmt.Fprintln(out, ui.Success.Sprint("✓")+" Logged in as "+ui.Highlight.Sprint(user.Name)+" "+ui.Muted.Sprint(user.Role))
	})
}

var sessionLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email, password and the emailed code",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := workflows.Login(ctx, a, workflows.LoginOptions{Email: sessionEmail, Password: password}); err != nil {
			return reportError(cmd, err)
		}
		cmd.PrintErrln(ui.Info.Sprint("→") + " A verification code was sent to " + ui.Highlight.Sprint(strings.TrimSpace(sessionEmail)))

		code, err := readCode()
		if err != nil {
			return err
		}

		defer announceSessionChanges(cmd, a)()
		if _, err := workflows.Verify(ctx, a, workflows.VerifyOptions{Code: code}); err != nil {
			return reportError(cmd, err)
		}

		if has, err := a.Keyring.HasStoredPrivateKey(); err == nil && !has {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info.Sprint("→")+" Run "+ui.Command.Sprint("portal keys init")+" to receive secrets on this device")
		}
		return nil
	},
}

var sessionVerifyCmd = &cobra.Command{
	Use:   "verify <code>",
	Short: "Complete a pending login with the emailed code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		defer announceSessionChanges(cmd, a)()
		if _, err := workflows.Verify(ctx, a, workflows.VerifyOptions{Code: args[0]}); err != nil {
			return reportError(cmd, err)
		}
		return nil
	},
}

var sessionResendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Send a new verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := workflows.ResendCode(ctx, a); err != nil {
			return reportError(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" A new verification code was sent")
		return nil
	},
}

var sessionLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		defer announceSessionChanges(cmd, a)()
		if err := workflows.Logout(ctx, a, workflows.LogoutOptions{ForgetDevice: sessionForgetDevice}); err != nil {
			return reportError(cmd, err)
		}
		return nil
	},
}

var sessionWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if err := a.RequireLogin(); err != nil {
			return reportError(cmd, err)
		}
		user := a.Session.Current()
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", user.Name, user.Email, ui.Muted.Sprint(user.Role))
		return nil
	},
}
