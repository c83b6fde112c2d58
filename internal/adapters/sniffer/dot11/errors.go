package dot11

import (
	"errors"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/ie"
)

var (
	ErrUnsupportedProtocolVersion = errors.New("unsupported 802.11 protocol version")

	// ErrTruncatedInput is shared with the element parser so callers can
	// test for it once.
	ErrTruncatedInput = ie.ErrTruncatedInput
)

// DecodeError reports a field that ran past the end of the frame.
type DecodeError = ie.DecodeError
