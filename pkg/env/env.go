// Package env reads the few settings needed before config.Load runs, such as
// the log format and the platform-assigned port.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces the service's own variables.
const Prefix = "IMPORTOPS_"

// Get returns IMPORTOPS_<key> when set, then the bare key, then fallback.
// Blank values count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
