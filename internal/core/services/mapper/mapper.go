package mapper

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
	"github.com/lcalzada-xor/nearby/internal/core/ports"
)

// Mode selects what the mapper records. It is fixed for the mapper's life.
type Mode int

const (
	ModeTopology Mode = iota
	ModePeople
)

func (m Mode) String() string {
	if m == ModePeople {
		return "people"
	}
	return "topology"
}

// PhoneVendors lists the vendor names whose probing devices count as people.
// Matching is exact.
var PhoneVendors = map[string]struct{}{
	"Samsung Electronics Co.,Ltd":                                    {},
	"Apple, Inc.":                                                    {},
	"HTC Corporation":                                                {},
	"Huawei Symantec Technologies Co.,Ltd.":                          {},
	"Google, Inc.":                                                   {},
	"Microsoft":                                                      {},
	"Motorola (Wuhan) Mobility Technologies Communication Co., Ltd.": {},
}

// IsPhoneVendor reports whether vendor is on the phone allow-list.
func IsPhoneVendor(vendor string) bool {
	_, ok := PhoneVendors[vendor]
	return ok
}

// Change describes what a single Map call added.
type Change uint8

const (
	ChangeAccessPoint Change = 1 << iota
	ChangeNode
	ChangeLink
	ChangePersonAdded
	ChangePersonUpdated

	ChangeNone Change = 0
)

func (c Change) Has(f Change) bool { return c&f != 0 }

// Mapper folds decoded frames into the topology of nearby access points, or
// into the set of nearby phones in people mode. It is not safe for
// concurrent use.
type Mapper struct {
	vendors ports.VendorLookup
	mode    Mode
	logger  *slog.Logger

	aps    map[string]*domain.Collection
	people map[string]domain.Person
}

// New creates a mapper. A nil logger uses slog.Default().
func New(vendors ports.VendorLookup, mode Mode, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		vendors: vendors,
		mode:    mode,
		logger:  logger,
		aps:     make(map[string]*domain.Collection),
		people:  make(map[string]domain.Person),
	}
}

func (m *Mapper) Mode() Mode { return m.mode }

// Map applies one decoded frame.
func (m *Mapper) Map(radio domain.RadioMetadata, h domain.MacHeader) Change {
	fc := h.FrameControl

	if m.mode == ModePeople {
		if fc.Is(domain.FrameTypeManagement, domain.SubtypeProbeReq) {
			return m.trackPerson(radio, h.Src)
		}
		return ChangeNone
	}

	switch {
	case fc.Is(domain.FrameTypeManagement, domain.SubtypeProbeReq):
		return m.addToCollection(h.Src, h.BSSID, radio.Signal)
	case fc.Is(domain.FrameTypeData, domain.SubtypeData), fc.Is(domain.FrameTypeData, domain.SubtypeQoSData):
		c := m.addToCollection(h.Src, h.BSSID, radio.Signal)
		return c | m.addToCollection(h.Dst, h.BSSID, radio.Signal)
	case fc.Is(domain.FrameTypeData, domain.SubtypeNullData), fc.Is(domain.FrameTypeData, domain.SubtypeQoSNull):
		return m.addToCollection(h.Dst, h.BSSID, radio.Signal)
	case fc.Is(domain.FrameTypeManagement, domain.SubtypeBeacon):
		return m.addAccessPoint(radio, h)
	}
	return ChangeNone
}

func (m *Mapper) trackPerson(radio domain.RadioMetadata, mac string) Change {
	vendor := m.vendors.Lookup(mac)
	if !IsPhoneVendor(vendor) {
		return ChangeNone
	}

	_, known := m.people[mac]
	m.people[mac] = domain.Person{
		MAC:      mac,
		Vendor:   vendor,
		Signal:   radio.Signal,
		Distance: float32(EstimateDistance(float64(radio.Frequency), float64(radio.Signal))),
	}
	if known {
		return ChangePersonUpdated
	}
	m.logger.Debug("person detected", "mac", mac, "vendor", vendor, "signal", radio.Signal)
	return ChangePersonAdded
}

func (m *Mapper) addAccessPoint(radio domain.RadioMetadata, h domain.MacHeader) Change {
	if h.Body.Kind != domain.BodyBeacon || h.Body.Beacon == nil {
		return ChangeNone
	}
	bssid := h.BSSID
	if bssid == domain.BroadcastMAC || bssid == domain.UnspecifiedMAC {
		return ChangeNone
	}
	beacon := h.Body.Beacon
	if beacon.SSID.Value == "" {
		return ChangeNone
	}
	if _, ok := m.aps[bssid]; ok {
		return ChangeNone
	}

	label := m.vendors.Lookup(bssid)
	m.aps[bssid] = &domain.Collection{
		SSID:           beacon.SSID.Value,
		Protocol:       domain.ProtocolIEEE80211,
		RouterID:       bssid,
		Label:          label,
		Signal:         radio.Signal,
		CurrentChannel: beacon.CurrentChannel,
		Nodes:          []domain.Node{{MAC: bssid, Properties: domain.Properties{Vendor: label}}},
		Links:          []domain.Link{},
	}
	m.logger.Debug("access point discovered", "bssid", bssid, "ssid", beacon.SSID.Value, "channel", beacon.CurrentChannel)
	return ChangeAccessPoint
}

func (m *Mapper) addToCollection(mac, bssid string, signal int8) Change {
	if mac == domain.BroadcastMAC || strings.HasPrefix(mac, domain.IPv6MulticastPrefix) {
		return ChangeNone
	}
	ap, ok := m.aps[bssid]
	if !ok {
		return ChangeNone
	}

	change := ChangeNone
	if !ap.HasNode(mac) {
		ap.Nodes = append(ap.Nodes, domain.Node{
			MAC:        mac,
			Properties: domain.Properties{Vendor: m.vendors.Lookup(mac), Signal: signal},
		})
		change |= ChangeNode
	}
	if !ap.HasLink(mac, bssid) {
		ap.Links = append(ap.Links, domain.Link{Source: mac, Target: bssid})
		change |= ChangeLink
	}
	return change
}

// AccessPoint returns a copy of the collection for bssid.
func (m *Mapper) AccessPoint(bssid string) (domain.Collection, bool) {
	ap, ok := m.aps[bssid]
	if !ok {
		return domain.Collection{}, false
	}
	return ap.Clone(), true
}

// Collections returns copies of all access point collections, sorted by BSSID.
func (m *Mapper) Collections() []domain.Collection {
	out := make([]domain.Collection, 0, len(m.aps))
	for _, ap := range m.aps {
		out = append(out, ap.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RouterID < out[j].RouterID })
	return out
}

// People returns the detected phones sorted by MAC.
func (m *Mapper) People() []domain.Person {
	out := make([]domain.Person, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p)
	}
	domain.SortPeople(out)
	return out
}
