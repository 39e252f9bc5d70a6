package errors

import "errors"

// Device errors indicate the local device lacks key material.
var (
	// ErrDeviceNotRegistered indicates no private key is stored on this device.
	ErrDeviceNotRegistered = errors.New("this device has no stored private key")

	// ErrDeviceAlreadyRegistered indicates a private key is already stored on this device.
	ErrDeviceAlreadyRegistered = errors.New("this device already has a stored private key")

	// ErrKeyNotFound indicates the recipient's public key could not be obtained.
	ErrKeyNotFound = errors.New("encryption key not found")
)

// Session errors indicate problems with the logged-in user.
var (
	// ErrNotLoggedIn indicates no session tokens are stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionIncomplete indicates the cached user profile is missing fields.
	ErrSessionIncomplete = errors.New("stored session is incomplete")

	// ErrSessionExpired indicates the remote side ended the session.
	ErrSessionExpired = errors.New("session expired")

	// ErrMissingCodeID indicates a verification step was attempted before login.
	ErrMissingCodeID = errors.New("no pending verification code")
)

// Remote errors indicate the portal API could not serve a request.
var (
	// ErrRemoteRejected indicates the API answered with a non-success status.
	ErrRemoteRejected = errors.New("request rejected by the portal API")

	// ErrUnexpectedResponse indicates the API answered with an unreadable body.
	ErrUnexpectedResponse = errors.New("unexpected response from the portal API")

	// ErrNotConnected indicates a chat message was sent without a live connection.
	ErrNotConnected = errors.New("chat is not connected")

	// ErrReconnectExhausted indicates the chat gave up reconnecting.
	ErrReconnectExhausted = errors.New("could not reconnect to chat")
)

// Input errors indicate a form or flag value was rejected before any request.
var (
	// ErrInvalidInput indicates a form failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates the configuration file is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")
)
