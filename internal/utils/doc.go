// Package utils provides small helpers shared across the portal client.
//
// # System Utilities
//
//   - GetUsername, GetHostname: identity of the local machine
//   - SanitizeDeviceName, GenerateDeviceName: default device naming
//
// # String Utilities
//
//   - IsValidEmail: email shape check used by the login form
//
// # I/O and Terminal Utilities
//
//   - ReadStdin, ReadInput: piped plaintext and payloads
//   - ReadPassword: hidden password prompt
//   - IsTerminal: TTY detection
package utils
