package workflows

import (
	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/audit"
)

// auditEntry starts an audit entry for op, falling back to the in-memory
// session when the device file has no user.
func auditEntry(a *app.App, op string) audit.Entry {
	entry := audit.LogWithUser(op)
	if entry.User == "" && a.Session != nil {
		if user := a.Session.Current(); user.Role.Valid() {
			entry.User = user.Email
		}
	}
	if entry.DeviceUUID == "" && a.Config != nil {
		entry.DeviceUUID = a.Config.Device.UUID
	}
	return entry
}
