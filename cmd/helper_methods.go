package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/secrets"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/validation"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. The returned cleanup writes spinner.FinalMSG to
// out, adding a trailing newline when missing.
func startSpinner(message string, out io.Writer) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(out, finalMsg)
		}
	}

	return s, cleanup
}

// commandContext returns a context cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// formatError turns the errors a workflow is expected to return into a
// user-facing message with a hint. ok is false for unexpected errors,
// which the caller returns to cobra.
func formatError(err error) (msg string, ok bool) {
	fail := ui.Error.Sprint("✗") + " "
	hint := "\n" + ui.Info.Sprint("→") + " "

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		msg = fail + "Invalid input"
		for _, fe := range verrs {
			msg += "\n  " + ui.Highlight.Sprint(fe.Field) + ": " + fe.Message
		}
		return msg, true
	}

	var cryptoErr *secrets.CryptoError
	if errors.As(err, &cryptoErr) {
		return fail + secrets.Message(cryptoErr.Code) + " " + ui.Muted.Sprint(string(cryptoErr.Code)), true
	}

	switch {
	case errors.Is(err, perrors.ErrNotLoggedIn):
		return fail + "You are not logged in" + hint + "Run " + ui.Command.Sprint("portal session login"), true
	case errors.Is(err, perrors.ErrSessionExpired):
		return fail + "Your session has expired" + hint + "Run " + ui.Command.Sprint("portal session login"), true
	case errors.Is(err, perrors.ErrDeviceNotRegistered):
		return fail + "This device has no key pair" + hint + "Run " + ui.Command.Sprint("portal keys init"), true
	case errors.Is(err, perrors.ErrDeviceAlreadyRegistered):
		return fail + "This device already has a key pair" + hint +
			"Use " + ui.Flag.Sprint("--force") + " to replace it; secrets encrypted for the old key become unreadable", true
	case errors.Is(err, perrors.ErrMissingCodeID):
		return fail + "No verification is pending" + hint + "Run " + ui.Command.Sprint("portal session login") + " first", true
	case errors.Is(err, perrors.ErrKeyNotFound):
		return fail + "The recipient has not registered a key yet", true
	case errors.Is(err, perrors.ErrReconnectExhausted):
		return fail + "Lost the chat connection" + hint + "Check your network and run the command again", true
	case errors.Is(err, perrors.ErrNotConnected):
		return fail + "The chat is not connected yet; the message was not sent", true
	case errors.Is(err, perrors.ErrRemoteRejected):
		return fail + err.Error(), true
	case errors.Is(err, perrors.ErrInvalidConfig):
		return fail + err.Error() + hint + "Check " + ui.Command.Sprint("portal config show"), true
	}
	return "", false
}

// finish reports err through the spinner. Expected errors become the final
// message and are not returned.
func finish(s *spinner.Spinner, err error) error {
	if err == nil {
		return nil
	}
	if msg, ok := formatError(err); ok {
		Logger.Debugf("%v", err)
		s.FinalMSG = msg
		return nil
	}
	return Logger.ErrorfAndReturn("%w", err)
}
