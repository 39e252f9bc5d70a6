// Package devicestore is the device-local key/value store.
//
// It holds values that must never leave this machine (the private key) and
// cached session data (user profile, auth cookies). FileStore persists a
// flat string map as TOML with 0600 permissions; MemoryStore keeps values in
// process memory.
//
// Writes are last-write-wins. A single logical device writes the store, so
// no cross-process locking is attempted.
package devicestore
