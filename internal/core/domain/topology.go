package domain

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

const (
	// BroadcastMAC and UnspecifiedMAC never identify an access point.
	BroadcastMAC   = "ff:ff:ff:ff:ff:ff"
	UnspecifiedMAC = "00:00:00:00:00:00"

	// IPv6MulticastPrefix marks 33:33:00:xx:xx:xx group addresses.
	IPv6MulticastPrefix = "33:33:00:"

	ProtocolIEEE80211 = "802.11"
)

// Properties are frozen at the node's first sighting.
type Properties struct {
	Vendor string `json:"vendor"`
	Signal int8   `json:"signal"`
}

// Node is a device seen talking through an access point.
type Node struct {
	MAC        string     `json:"id"`
	Properties Properties `json:"properties"`
}

// Link is an ordered (source, target) pair; (A,B) and (B,A) are distinct.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Collection is the topology of one access point.
type Collection struct {
	SSID           string `json:"type"`
	Protocol       string `json:"protocol"`
	Version        string `json:"version"`
	RouterID       string `json:"router_id"`
	Label          string `json:"label"`
	Signal         int8   `json:"signal"`
	CurrentChannel uint8  `json:"current_channel"`
	Nodes          []Node `json:"nodes"`
	Links          []Link `json:"links"`
}

// HasNode reports whether mac is already a node of the collection.
func (c *Collection) HasNode(mac string) bool {
	for _, n := range c.Nodes {
		if n.MAC == mac {
			return true
		}
	}
	return false
}

// HasLink reports whether the exact ordered pair is already present.
func (c *Collection) HasLink(source, target string) bool {
	for _, l := range c.Links {
		if l.Source == source && l.Target == target {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to other goroutines.
func (c Collection) Clone() Collection {
	out := c
	out.Nodes = append([]Node(nil), c.Nodes...)
	out.Links = append([]Link(nil), c.Links...)
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Links == nil {
		out.Links = []Link{}
	}
	return out
}

// NetworkCollection is the exported topology document.
type NetworkCollection struct {
	Type       string       `json:"type"`
	Collection []Collection `json:"collection"`
}

// NewNetworkCollection wraps collections sorted by router id.
func NewNetworkCollection(cs []Collection) NetworkCollection {
	out := make([]Collection, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].RouterID < out[j].RouterID })
	return NetworkCollection{Type: "NetworkCollection", Collection: out}
}

// Person is a probing phone with an estimated distance in metres.
type Person struct {
	MAC      string  `json:"mac"`
	Vendor   string  `json:"vendor"`
	Signal   int8    `json:"signal"`
	Distance float32 `json:"distance"`
}

// MarshalJSON writes a non-finite distance as null.
func (p Person) MarshalJSON() ([]byte, error) {
	type person struct {
		MAC      string   `json:"mac"`
		Vendor   string   `json:"vendor"`
		Signal   int8     `json:"signal"`
		Distance *float32 `json:"distance"`
	}
	out := person{MAC: p.MAC, Vendor: p.Vendor, Signal: p.Signal}
	if d := float64(p.Distance); !math.IsNaN(d) && !math.IsInf(d, 0) {
		out.Distance = &p.Distance
	}
	return json.Marshal(out)
}

// SortPeople orders people by MAC in place.
func SortPeople(ps []Person) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].MAC < ps[j].MAC })
}

// Snapshot is an immutable view of the mapper state at one point of a session.
type Snapshot struct {
	SessionID   string       `json:"session_id"`
	TakenAt     time.Time    `json:"taken_at"`
	PeopleMode  bool         `json:"people_mode"`
	Collections []Collection `json:"collections"`
	People      []Person     `json:"people"`
	Frames      uint64       `json:"frames"`
	Dropped     uint64       `json:"dropped"`
}

// Collection returns the access point with the given BSSID.
func (s *Snapshot) Collection(bssid string) (Collection, bool) {
	for _, c := range s.Collections {
		if c.RouterID == bssid {
			return c, true
		}
	}
	return Collection{}, false
}
