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
)

// RegisterDeviceOptions configures the register device workflow.
type RegisterDeviceOptions struct {
	// Force replaces a key pair that is already stored on this device.
	Force bool
}

// RegisterDeviceResult contains the outcome of a device registration.
type RegisterDeviceResult struct {
	// PublicKey is the uploaded public key (base64 SPKI).
	PublicKey string

	// Replaced is true when an existing key pair was overwritten.
	Replaced bool
}

// RegisterDevice generates a key pair for this device, keeps the private
// key in the device store and uploads the public key.
//
// Returns ErrNotLoggedIn without a session and ErrDeviceAlreadyRegistered
// when a key is stored and Force is not set. If the upload fails the
// previous device state is restored.
func RegisterDevice(ctx context.Context, a *app.App, opts RegisterDeviceOptions) (*RegisterDeviceResult, error) {
	if err := a.RequireLogin(); err != nil {
		return nil, err
	}

	previous, hadKey, err := a.Keyring.GetStoredPrivateKey()
	if err != nil {
		return nil, err
	}
	if hadKey && !opts.Force {
		return nil, perrors.ErrDeviceAlreadyRegistered
	}

	publicKey, err := a.Keyring.InitializeUserKeys()
	if err != nil {
		return nil, err
	}

	if err := a.API.RegisterKey(ctx, publicKey); err != nil {
		if restoreErr := restorePrivateKey(a.Device, previous, hadKey); restoreErr != nil {
			a.Logger.Warnf("Could not restore the previous device key: %v", restoreErr)
		}
		return nil, fmt.Errorf("failed to upload public key: %w", err)
	}

	entry := auditEntry(a, audit.OpRegisterDevice)
	entry.Replaced = hadKey
	audit.Log(entry)

	return &RegisterDeviceResult{PublicKey: publicKey, Replaced: hadKey}, nil
}

func restorePrivateKey(device devicestore.Store, previous string, hadKey bool) error {
	if hadKey {
		return device.Set(devicestore.KeyPrivateKey, previous)
	}
	return device.Remove(devicestore.KeyPrivateKey)
}

// DeviceStatusResult describes the local device and session.
type DeviceStatusResult struct {
	DeviceName string
	DeviceUUID string

	// Registered is true when a private key is stored on this device.
	Registered bool

	// PublicKey is derived from the stored private key. Empty when not
	// registered.
	PublicKey string

	LoggedIn bool
	User     session.User
}

// DeviceStatus reports the device identity, key and session state. It
// makes no API calls.
func DeviceStatus(ctx context.Context, a *app.App) (*DeviceStatusResult, error) {
	result := &DeviceStatusResult{
		DeviceName: a.Config.Device.Name,
		DeviceUUID: a.Config.Device.UUID,
		User:       a.Session.Current(),
	}

	loggedIn, err := a.Session.LoggedIn()
	if err != nil {
		return nil, err
	}
	result.LoggedIn = loggedIn

	publicKey, err := a.Keyring.PublicKey()
	switch {
	case errors.Is(err, perrors.ErrDeviceNotRegistered):
	case err != nil:
		return nil, err
	default:
		result.Registered = true
		result.PublicKey = publicKey
	}

	return result, nil
}

// ForgetDeviceOptions configures the forget device workflow.
type ForgetDeviceOptions struct {
	// LocalOnly leaves the public key registered with the API.
	LocalOnly bool
}

// ForgetDevice removes the public key from the API and the private key from
// this device. Secrets encrypted for the old key can no longer be read.
func ForgetDevice(ctx context.Context, a *app.App, opts ForgetDeviceOptions) error {
	has, err := a.Keyring.HasStoredPrivateKey()
	if err != nil {
		return err
	}
	if !has {
		return perrors.ErrDeviceNotRegistered
	}

	if !opts.LocalOnly {
		if err := a.RequireLogin(); err != nil {
			return err
		}
		if err := a.API.DeleteKey(ctx); err != nil {
			return fmt.Errorf("failed to delete public key: %w", err)
		}
	}

	if err := a.Keyring.ClearStoredPrivateKey(); err != nil {
		return err
	}

	audit.Log(auditEntry(a, audit.OpForgetDevice))
	return nil
}
