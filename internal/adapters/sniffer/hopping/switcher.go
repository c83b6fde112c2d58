package hopping

import (
	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/driver"
	"github.com/lcalzada-xor/nearby/internal/core/ports"
)

// IWSwitcher tunes the radio with `iw <iface> set channel <n>`.
type IWSwitcher struct{}

var _ ports.ChannelSwitcher = IWSwitcher{}

// SetChannel implements ports.ChannelSwitcher.
func (IWSwitcher) SetChannel(iface string, channel int) error {
	return driver.SetInterfaceChannel(iface, channel)
}
