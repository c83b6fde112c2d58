// Package capture turns captured packets into raw 802.11 frames plus the
// radio metadata reported alongside them.
package capture

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

var (
	// ErrTimeout is returned by sources when no packet arrived within the
	// read timeout. Callers retry.
	ErrTimeout = errors.New("capture read timeout")

	// ErrMalformedRadiotap marks a single packet whose radiotap header could
	// not be decoded. Only that packet is lost.
	ErrMalformedRadiotap = errors.New("malformed radiotap header")
)

const fcsLen = 4

// StripRadiotap decodes the radiotap header of pkt and returns the 802.11
// frame that follows it. A trailing FCS announced by the flags field is
// removed without being checked.
func StripRadiotap(pkt []byte) (frame []byte, radio domain.RadioMetadata, err error) {
	// The radiotap decoder indexes its input without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			frame, radio = nil, domain.RadioMetadata{}
			err = fmt.Errorf("%w: %v", ErrMalformedRadiotap, r)
		}
	}()

	var rt layers.RadioTap
	if err := rt.DecodeFromBytes(pkt, gopacket.NilDecodeFeedback); err != nil {
		return nil, domain.RadioMetadata{}, fmt.Errorf("%w: %v", ErrMalformedRadiotap, err)
	}
	if int(rt.Length) < 8 || int(rt.Length) > len(pkt) {
		return nil, domain.RadioMetadata{}, fmt.Errorf("%w: length %d of %d bytes", ErrMalformedRadiotap, rt.Length, len(pkt))
	}

	if rt.Present.DBMAntennaSignal() {
		radio.Signal = rt.DBMAntennaSignal
	}
	if rt.Present.Channel() {
		radio.Frequency = float32(rt.ChannelFrequency)
		radio.Channel = uint8(FrequencyToChannel(int(rt.ChannelFrequency)))
	}

	// Payload is taken from the original buffer: the decoder appends an
	// FCS of its own when none was captured.
	frame = pkt[rt.Length:]
	if rt.Present.Flags() && rt.Flags.FCS() && len(frame) >= fcsLen {
		frame = frame[:len(frame)-fcsLen]
	}
	return frame, radio, nil
}
