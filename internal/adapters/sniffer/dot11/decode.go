package dot11

import (
	"fmt"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/ie"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// Decode parses one raw 802.11 frame (no radiotap header, no FCS). channel
// is the radio channel the frame was captured on.
func Decode(frame []byte, channel uint8) (domain.MacHeader, error) {
	if len(frame) < 2 {
		return domain.MacHeader{}, &DecodeError{Field: "frame control", Need: 2, Have: len(frame)}
	}

	fc, err := DecodeFrameControl(frame[0], frame[1])
	if err != nil {
		return domain.MacHeader{}, err
	}

	wds := fc.ToDS && fc.FromDS
	addrs, err := ParseAddresses(frame, wds)
	if err != nil {
		return domain.MacHeader{}, err
	}

	h := domain.MacHeader{FrameControl: fc}
	copy(h.Duration[:], frame[2:4])
	copy(h.SeqCtl[:], frame[seqCtlOffset:seqCtlOffset+2])
	h.Dst, h.Src, h.BSSID = ResolveAddresses(fc, addrs)

	bodyOffset := headerLen
	if wds {
		bodyOffset = wdsHeaderLen
	}
	h.Body, err = ie.ParseBody(fc, frame[bodyOffset:], channel)
	if err != nil {
		return domain.MacHeader{}, fmt.Errorf("%s body: %w", fc.Subtype, err)
	}
	return h, nil
}
