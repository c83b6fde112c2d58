package ports

import (
	"context"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// FrameSource delivers raw 802.11 frames, radiotap already stripped.
// ReadFrame blocks up to the source's read timeout. A timeout is reported as
// capture.ErrTimeout and is not fatal; io.EOF ends an offline capture.
type FrameSource interface {
	ReadFrame() (data []byte, radio domain.RadioMetadata, err error)
	Close()
}

// VendorLookup resolves the vendor name registered for a MAC address.
// It returns "" when nothing is known and never fails.
type VendorLookup interface {
	Lookup(mac string) string
}

// SnapshotPublisher receives the topology snapshots produced by a session.
type SnapshotPublisher interface {
	Publish(snap domain.Snapshot)
}

// Exporter writes the final snapshot of a session.
type Exporter interface {
	Export(ctx context.Context, snap domain.Snapshot, path string) error
}

// ChannelSwitcher tunes an interface to a channel.
type ChannelSwitcher interface {
	SetChannel(iface string, channel int) error
}
