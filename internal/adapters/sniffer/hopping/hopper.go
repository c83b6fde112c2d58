package hopping

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lcalzada-xor/nearby/internal/core/ports"
)

// ErrAlreadyStarted is returned when Start is called on a hopper that has
// already run.
var ErrAlreadyStarted = errors.New("channel hopper already started")

// ChannelHopper cycles the capture interface through a fixed list of
// channels. The list is copied at construction and never modified, so the
// capture loop may read it without locking.
type ChannelHopper struct {
	iface    string
	channels []int
	dwell    time.Duration
	switcher ports.ChannelSwitcher

	state      AtomicState
	next       int
	errorCount int
	hops       int
}

// NewHopper creates a ChannelHopper. A nil switcher uses IWSwitcher.
func NewHopper(iface string, channels []int, dwell time.Duration, switcher ports.ChannelSwitcher) *ChannelHopper {
	if switcher == nil {
		switcher = IWSwitcher{}
	}
	if dwell <= 0 {
		dwell = time.Second
	}
	return &ChannelHopper{
		iface:    iface,
		channels: append([]int(nil), channels...),
		dwell:    dwell,
		switcher: switcher,
	}
}

// Channels returns a copy of the channel list.
func (h *ChannelHopper) Channels() []int {
	return append([]int(nil), h.channels...)
}

// Dwell is the time spent on each channel.
func (h *ChannelHopper) Dwell() time.Duration { return h.dwell }

// State reports whether the hopper is idle, running or stopped.
func (h *ChannelHopper) State() HopperState { return h.state.Get() }

// Start tunes to the first channel immediately, then advances one channel
// per dwell until ctx is cancelled. It blocks; run it in its own goroutine.
func (h *ChannelHopper) Start(ctx context.Context) error {
	if !h.state.CompareAndSwap(StateIdle, StateHopping) {
		return ErrAlreadyStarted
	}
	defer h.state.Set(StateStopped)

	if len(h.channels) == 0 {
		<-ctx.Done()
		return nil
	}

	log.Printf("Starting channel hopper on %s (channels=%v dwell=%v)", h.iface, h.channels, h.dwell)

	ticker := time.NewTicker(h.dwell)
	defer ticker.Stop()

	h.hop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("Stopping channel hopper on %s after %d hops", h.iface, h.hops)
			return nil
		case <-ticker.C:
			h.hop()
		}
	}
}

func (h *ChannelHopper) hop() {
	ch := h.channels[h.next]
	h.next = (h.next + 1) % len(h.channels)
	h.hops++

	if err := h.switcher.SetChannel(h.iface, ch); err != nil {
		h.errorCount++
		// Persistent failures (e.g. unsupported channel) would flood the log.
		if h.errorCount == 1 || h.errorCount%10 == 0 {
			log.Printf("Warning: Failed to set channel %d: %v (Consecutive errors: %d)", ch, err, h.errorCount)
		}
		return
	}
	if h.errorCount > 0 {
		log.Printf("Hopper recovered after %d errors.", h.errorCount)
		h.errorCount = 0
	}
}
