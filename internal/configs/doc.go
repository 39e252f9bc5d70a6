// Package configs manages on-disk configuration for the portal client.
//
// Two directories are involved:
//
//   - Config dir: <user config dir>/portal, holding config.toml
//   - Data dir: <data home>/portal, holding device.toml and audit.jsonl
//
// Both can be overridden with PORTAL_CONFIG_HOME and PORTAL_DATA_HOME, which
// is how tests isolate themselves.
//
// # Configuration
//
// config.toml stores:
//   - The portal API base URL (overridable with PORTAL_API_URL)
//   - HTTP timeout and retry budget
//   - Device identity (UUID and a human-readable name)
//
// The device UUID is generated on first use and identifies this machine in
// the audit log. It is never sent to the API.
//
// # Settings
//
// PortalSettings is resolved at startup. Call InitSettings() again after
// changing the environment overrides.
package configs
