package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/audit"
	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/session"
	"github.com/worksdev/portal/internal/validation"
)

// LoginOptions holds the user's credentials.
type LoginOptions struct {
	Email    string
	Password string
}

// LoginResult contains the pending verification.
type LoginResult struct {
	// CodeID identifies the code emailed to the user. It is also kept in
	// the device store for Verify and ResendCode.
	CodeID string
}

// Login validates the credentials and starts a session. The session is
// only usable after Verify.
func Login(ctx context.Context, a *app.App, opts LoginOptions) (*LoginResult, error) {
	values, verrs := validation.Validate(validation.LoginSchema, map[string]string{
		"email":    opts.Email,
		"password": opts.Password,
	})
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	codeID, err := a.API.Login(ctx, values["email"], values["password"])
	if err != nil {
		return nil, err
	}

	if err := a.Device.Set(devicestore.KeyAuthCodeID, codeID); err != nil {
		return nil, fmt.Errorf("failed to save verification code id: %w", err)
	}

	return &LoginResult{CodeID: codeID}, nil
}

// VerifyOptions configures the verify workflow.
type VerifyOptions struct {
	Code string

	// CodeID overrides the id stored by Login.
	CodeID string
}

// Verify completes a login with the emailed code and persists the user.
//
// Returns ErrMissingCodeID when Login was not called first.
func Verify(ctx context.Context, a *app.App, opts VerifyOptions) (*session.User, error) {
	values, verrs := validation.Validate(validation.VerificationCodeSchema, map[string]string{
		"code": opts.Code,
	})
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	codeID, err := pendingCodeID(a, opts.CodeID)
	if err != nil {
		return nil, err
	}

	remote, err := a.API.Verify(ctx, codeID, values["code"])
	if err != nil {
		return nil, err
	}

	user := session.User{Name: remote.Name, Email: remote.Email, Role: session.Role(remote.Role)}
	if err := a.Session.Set(user); err != nil {
		return nil, err
	}
	if err := a.Device.Remove(devicestore.KeyAuthCodeID); err != nil {
		a.Logger.Warnf("Could not remove the verification code id: %v", err)
	}

	audit.Log(auditEntry(a, audit.OpLogin))
	return &user, nil
}

// ResendCode requests a new verification code and stores its id.
func ResendCode(ctx context.Context, a *app.App) (string, error) {
	codeID, err := pendingCodeID(a, "")
	if err != nil {
		return "", err
	}

	next, err := a.API.ResendCode(ctx, codeID)
	if err != nil {
		return "", err
	}
	if next == "" {
		next = codeID
	}
	if err := a.Device.Set(devicestore.KeyAuthCodeID, next); err != nil {
		return "", fmt.Errorf("failed to save verification code id: %w", err)
	}
	return next, nil
}

func pendingCodeID(a *app.App, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	codeID, ok, err := a.Device.Get(devicestore.KeyAuthCodeID)
	if err != nil {
		return "", err
	}
	if !ok || codeID == "" {
		return "", perrors.ErrMissingCodeID
	}
	return codeID, nil
}

// LogoutOptions configures the logout workflow.
type LogoutOptions struct {
	// ForgetDevice also removes the private key from this device.
	ForgetDevice bool
}

// Logout ends the session. Local state is cleared even when the API call
// fails because the session already expired.
func Logout(ctx context.Context, a *app.App, opts LogoutOptions) error {
	entry := auditEntry(a, audit.OpLogout)

	loggedIn, err := a.Session.LoggedIn()
	if err != nil {
		return err
	}
	if loggedIn {
		if err := a.API.Logout(ctx); err != nil && !errors.Is(err, perrors.ErrSessionExpired) {
			return fmt.Errorf("failed to end session: %w", err)
		}
	}

	if err := a.Session.Clear(); err != nil {
		return err
	}
	if opts.ForgetDevice {
		if err := a.Keyring.ClearStoredPrivateKey(); err != nil {
			return err
		}
	}

	audit.Log(entry)
	return nil
}
