// Package monitor captures from a wireless interface in monitor mode. It
// needs libpcap; offline replay lives in package capture.
package monitor

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// pcap does not export this error value.
const errIfaceNotUp = "Interface Not Up"

const (
	SnapLength  = 65536
	ReadTimeout = 100 * time.Millisecond
)

// LiveSource reads frames from a monitor interface.
type LiveSource struct {
	iface  string
	handle *pcap.Handle
}

// Open activates a capture handle on iface. bringUp is called once when the
// interface is down, then activation is retried.
func Open(iface string, bringUp func(iface string) error) (*LiveSource, error) {
	for retry := 0; ; retry++ {
		handle, err := activate(iface)
		if err == nil {
			return &LiveSource{iface: iface, handle: handle}, nil
		}
		if retry == 0 && bringUp != nil && err.Error() == errIfaceNotUp {
			log.Printf("[MONITOR] Interface %s is down, bringing it up", iface)
			if err := bringUp(iface); err != nil {
				return nil, err
			}
			continue
		}
		return nil, fmt.Errorf("activate %s: %w", iface, err)
	}
}

func activate(iface string) (*pcap.Handle, error) {
	inactive, err := pcap.NewInactiveHandle(iface)
	if err != nil {
		return nil, err
	}
	defer inactive.CleanUp()

	if err := inactive.SetRFMon(true); err != nil {
		log.Printf("[MONITOR] Could not request rfmon on %s: %v", iface, err)
	}
	if err := inactive.SetSnapLen(SnapLength); err != nil {
		return nil, err
	}
	// A bounded timeout keeps Close from hanging on an idle interface.
	if err := inactive.SetTimeout(ReadTimeout); err != nil {
		return nil, err
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, err
	}
	if handle.LinkType() != layers.LinkTypeIEEE80211Radio {
		if err := handle.SetLinkType(layers.LinkTypeIEEE80211Radio); err != nil {
			handle.Close()
			return nil, fmt.Errorf("%w: %s does not deliver radiotap frames (%s)", capture.ErrUnsupportedLinkType, iface, handle.LinkType())
		}
	}
	return handle, nil
}

// ReadFrame blocks for at most ReadTimeout. An idle interface yields
// capture.ErrTimeout.
func (s *LiveSource) ReadFrame() ([]byte, domain.RadioMetadata, error) {
	data, _, err := s.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			return nil, domain.RadioMetadata{}, capture.ErrTimeout
		}
		return nil, domain.RadioMetadata{}, fmt.Errorf("%s: %w", s.iface, err)
	}
	return capture.StripRadiotap(data)
}

// Stats reports the kernel's packet counters.
func (s *LiveSource) Stats() (received, dropped int, err error) {
	st, err := s.handle.Stats()
	if err != nil {
		return 0, 0, err
	}
	return st.PacketsReceived, st.PacketsDropped, nil
}

func (s *LiveSource) Close() {
	s.handle.Close()
}
