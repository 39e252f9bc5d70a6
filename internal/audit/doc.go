// Package audit records portal operations performed from this device.
//
// Every mutation (device registration, secret creation, complement
// submission, discount change, login and logout) is appended to a local
// audit log so users can see what was sent to the API and when. Plaintext
// values are never written to the log.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	<data dir>/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - User email and device UUID
//   - Operation name
//   - Operation-specific details (secret id, order id, etc.)
//
// # Usage
//
// Create an entry with user info pre-populated:
//
//	entry := audit.LogWithUser("secrets.add")
//	entry.SecretID = created.ID
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit
