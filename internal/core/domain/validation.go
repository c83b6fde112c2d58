package domain

import (
	"regexp"
	"strings"
)

var (
	macRegex       = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidMAC checks if the string is a MAC address in colon or dash notation.
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// NormalizeMAC converts a valid MAC to the lowercase colon form used as node
// and router ids.
func NormalizeMAC(mac string) (string, bool) {
	if !IsValidMAC(mac) {
		return "", false
	}
	return strings.ToLower(strings.ReplaceAll(mac, "-", ":")), true
}

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _).
// The name is passed to iw and ip, so nothing else is accepted.
func IsValidInterface(iface string) bool {
	// IFNAMSIZ is 16
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}
