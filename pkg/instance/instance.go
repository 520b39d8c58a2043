package instance

import (
	"os"
	"strings"
)

const EnvInstanceID = "EGGTRADE_INSTANCE_ID"

// GetID returns the process identifier attached to logs: the configured
// instance id, else the hostname, else "local".
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvInstanceID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
