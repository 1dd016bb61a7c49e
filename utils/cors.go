package utils

import (
	"net/netip"
	"net/url"
	"strings"
)

// localPrefixes are the address ranges a settings client on the same network
// can come from.
var localPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// IsAllowedOrigin reports whether a browser Origin may call the settings API.
// Only local origins are accepted: localhost, .local and single-label names,
// and private or link-local addresses.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" || strings.HasSuffix(hostname, ".local") {
		return true
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		return isLocalAddr(addr)
	}

	// Single-label hostnames are LAN names.
	return !strings.Contains(hostname, ".")
}

func isLocalAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range localPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
