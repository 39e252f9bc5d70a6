package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/worksdev/portal/internal/configs"
	"github.com/worksdev/portal/internal/devicestore"
)

// Operation names.
const (
	OpRegisterDevice = "keys.init"
	OpForgetDevice   = "keys.forget"
	OpAddSecret      = "secrets.add"
	OpRevealSecrets  = "secrets.reveal"
	OpRemoveSecret   = "secrets.remove"
	OpSaveComplement = "complement.save"
	OpDropComplement = "complement.drop"
	OpSetDiscount    = "orders.discount"
	OpSetStatus      = "orders.status"
	OpLogin          = "session.login"
	OpLogout         = "session.logout"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp  string `json:"ts"`     // RFC3339 with microseconds.
	User       string `json:"user"`   // Email of the logged-in user.
	DeviceUUID string `json:"device"` // UUID of this device.
	Operation  string `json:"op"`     // Operation name.

	// Optional fields depending on operation.
	SecretID     int64  `json:"secret_id,omitempty"`     // For secrets.add and secrets.remove.
	SecretLabel  string `json:"secret_label,omitempty"`  // For secrets.add.
	ReceiverID   string `json:"receiver_id,omitempty"`   // For secrets.add.
	SecretsCount int    `json:"secrets_count,omitempty"` // For secrets.reveal.
	FailedCount  int    `json:"failed_count,omitempty"`  // For secrets.reveal.
	OrderID      int64  `json:"order_id,omitempty"`      // For orders.discount and orders.status.
	Percentage   string `json:"percentage,omitempty"`    // For orders.discount.
	Disposable   bool   `json:"disposable,omitempty"`    // For orders.discount.
	Status       int    `json:"status,omitempty"`        // For orders.status.
	Replaced     bool   `json:"replaced,omitempty"`      // For keys.init with --force.
}

// Log appends an entry to the audit log.
// If logging fails, it does not return an error.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser is a convenience function that populates the user and device
// fields from the config and device store.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}

	if config, err := configs.LoadConfig(); err == nil {
		entry.DeviceUUID = config.Device.UUID
	}

	store := devicestore.NewFileStore(configs.DeviceStorePath())
	if email, ok, err := store.Get(devicestore.KeyUserEmail); err == nil && ok {
		entry.User = email
	}

	return entry
}

// LogPath returns the path to the audit log file.
func LogPath() string {
	if configs.PortalSettings == nil {
		return ""
	}
	return configs.AuditLogPath()
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Filter returns the entries for one operation, oldest first.
func Filter(entries []Entry, op string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Operation == op {
			out = append(out, e)
		}
	}
	return out
}
