package utils

import (
	"os"
	"os/user"
	"regexp"
	"strings"
)

var (
	invalidDeviceChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	repeatedHyphens    = regexp.MustCompile(`-+`)
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	return os.Hostname()
}

// SanitizeDeviceName lowercases a name and keeps only [a-z0-9-_], with spaces turned into hyphens.
func SanitizeDeviceName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidDeviceChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if name == "" {
		name = "device"
	}
	return name
}

// GenerateDeviceName derives a device name from the hostname, falling back
// to the username and then to "device".
func GenerateDeviceName() (string, error) {
	hostname, err := GetHostname()
	if err != nil || hostname == "" {
		username, userErr := GetUsername()
		if userErr != nil {
			return "device", nil
		}
		hostname = username
	}
	return SanitizeDeviceName(hostname), nil
}
