package fingerprint

import (
	"fmt"
	"net"
	"strings"
)

// MACAddress is a parsed hardware address.
type MACAddress struct {
	address net.HardwareAddr
}

// ParseMAC accepts "xx:xx:xx:xx:xx:xx", "xx-xx-xx-xx-xx-xx" and bare
// 12 digit hex.
func ParseMAC(s string) (MACAddress, error) {
	if s == "" {
		return MACAddress{}, ErrEmptyMAC
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	if !strings.Contains(normalized, ":") && len(normalized) == 12 {
		parts := make([]string, 0, 6)
		for i := 0; i < 12; i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil || len(hw) != 6 {
		return MACAddress{}, &ValidationError{Field: "mac", Value: s, Err: ErrInvalidMAC}
	}
	return MACAddress{address: hw}, nil
}

// MustParseMAC is ParseMAC for known-valid input.
func MustParseMAC(s string) MACAddress {
	mac, err := ParseMAC(s)
	if err != nil {
		panic(fmt.Sprintf("invalid MAC address %q: %v", s, err))
	}
	return mac
}

// OUI returns the first three octets as "XX:XX:XX".
func (m MACAddress) OUI() string {
	if len(m.address) < 3 {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X", m.address[0], m.address[1], m.address[2])
}

// IsRandomized reports whether the locally administered bit is set.
func (m MACAddress) IsRandomized() bool {
	return len(m.address) > 0 && m.address[0]&0x02 != 0
}

// IsMulticast reports whether the group bit is set.
func (m MACAddress) IsMulticast() bool {
	return len(m.address) > 0 && m.address[0]&0x01 != 0
}

func (m MACAddress) String() string {
	return m.address.String()
}

func (m MACAddress) IsValid() bool {
	return len(m.address) > 0
}

// normalizeOUI converts "aa-bb-cc", "aa:bb:cc" or "aabbcc" to "AA:BB:CC".
// It returns "" when s does not start with an OUI.
func normalizeOUI(s string) string {
	s = strings.ToUpper(strings.ReplaceAll(s, "-", ":"))
	if len(s) >= 8 && s[2] == ':' && s[5] == ':' {
		s = s[0:2] + s[3:5] + s[6:8]
	}
	if len(s) < 6 {
		return ""
	}
	for _, c := range s[:6] {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return ""
		}
	}
	return s[0:2] + ":" + s[2:4] + ":" + s[4:6]
}
