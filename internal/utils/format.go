package utils

import (
	"net/url"
	"strings"
)

// ShortAddress abbreviates a wallet address for one-line display.
func ShortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}

// LinkHost returns the host of a candidate link without a leading "www.".
// Values that are not absolute URLs are returned unchanged, empty stays empty.
func LinkHost(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
