// Package errors provides typed error values for the portal client.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Device errors: the local device has no key pair (ErrDeviceNotRegistered)
//   - Session errors: the user is not logged in (ErrNotLoggedIn)
//   - Remote errors: the portal API rejected a request (ErrRemoteRejected)
//   - Input errors: a form failed validation (ErrInvalidInput)
//
// Cryptographic failures are not listed here. They surface as
// *secrets.CryptoError, which carries a machine-readable code that callers
// translate through secrets.Message.
//
// # Usage
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.RevealSecrets(ctx, a, opts)
//	if errors.Is(err, perrors.ErrDeviceNotRegistered) {
//	    // Suggest `portal keys init`
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("loading key for order %d: %w", id, perrors.ErrKeyNotFound)
package errors
