// Package workflows provides high-level orchestration for portal commands.
//
// Workflows coordinate multiple operations across packages (secrets,
// billing, api, session, audit) to implement complete user-facing
// features. Each workflow handles a single command's business logic,
// independent of CLI concerns like flag parsing, spinners, and output
// formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Builds an app.App and calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Validating input against the form schemas
//   - Checking prerequisites such as a stored session or device key
//   - Encrypting for, or decrypting from, the API
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - RegisterDevice, DeviceStatus, ForgetDevice: the device key pair
//   - EncryptText, DecryptText: offline encryption helpers
//   - AddSecret, ListSecrets, RevealSecrets, RemoveSecret: shared secrets
//   - SaveComplement, DropComplement: the encrypted contract complement
//   - OrderBreakdown, SetDiscount: order pricing
//   - OpenChat: a live thread connection
//   - Login, Verify, ResendCode, Logout: the session
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, crypto
// errors from internal/secrets, and validation.Errors for rejected input.
// Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.RevealSecrets(ctx, a, opts)
//	if errors.Is(err, perrors.ErrDeviceNotRegistered) {
//	    // Suggest `portal keys init`
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// It bounds every API call the workflow makes.
package workflows
