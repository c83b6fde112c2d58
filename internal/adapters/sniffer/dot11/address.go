package dot11

import (
	"fmt"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// Offsets inside the MAC header.
const (
	addr1Offset  = 4
	addr2Offset  = 10
	addr3Offset  = 16
	seqCtlOffset = 22
	addr4Offset  = 24

	headerLen    = 24
	wdsHeaderLen = 30
)

// Addresses holds the raw address fields of a MAC header, formatted.
// Addr4 is only present in frames with both DS bits set.
type Addresses struct {
	Addr1, Addr2, Addr3, Addr4 string
}

// FormatMAC renders six octets as lowercase colon separated hex.
func FormatMAC(b []byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// ParseAddresses reads the address block of a frame, starting at the frame
// control field. wds requests the fourth address.
func ParseAddresses(frame []byte, wds bool) (Addresses, error) {
	need := headerLen
	if wds {
		need = wdsHeaderLen
	}
	if len(frame) < need {
		return Addresses{}, &DecodeError{Field: "mac header", Need: need, Have: len(frame)}
	}

	a := Addresses{
		Addr1: FormatMAC(frame[addr1Offset:]),
		Addr2: FormatMAC(frame[addr2Offset:]),
		Addr3: FormatMAC(frame[addr3Offset:]),
	}
	if wds {
		a.Addr4 = FormatMAC(frame[addr4Offset:])
	}
	return a, nil
}

// ResolveAddresses maps the address fields to destination, source and BSSID
// according to the DS bits. Frames between distribution systems have no BSSID.
func ResolveAddresses(fc domain.FrameControl, a Addresses) (dst, src, bssid string) {
	switch {
	case fc.ToDS && fc.FromDS:
		return a.Addr3, a.Addr4, ""
	case fc.ToDS:
		return a.Addr2, a.Addr3, a.Addr1
	case fc.FromDS:
		return a.Addr3, a.Addr1, a.Addr2
	default:
		return a.Addr1, a.Addr2, a.Addr3
	}
}
