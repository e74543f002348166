package ovapi

import "strings"

const (
	SecureHost   = "https://v0.ovapi.nl"
	InsecureHost = "http://v0.ovapi.nl"
)

// ResolveAPIBase picks the API base once at startup. An explicit override wins,
// then the global override, then the host matching the page protocol: a page
// served over https may not call a plain http endpoint.
// Trailing slashes are stripped from configured values.
func ResolveAPIBase(queryOverride, globalOverride string, secure bool) string {
	if base := strings.TrimRight(strings.TrimSpace(queryOverride), "/"); base != "" {
		return base
	}
	if base := strings.TrimRight(strings.TrimSpace(globalOverride), "/"); base != "" {
		return base
	}
	if secure {
		return SecureHost
	}
	return InsecureHost
}
