// Package snifftest builds raw 802.11 frames and replays them as a frame
// source.
package snifftest

import (
	"encoding/binary"
	"net"
)

var Broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// MustMAC parses a MAC address or panics.
func MustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

// FrameBuilder assembles 802.11 frames from raw bytes.
type FrameBuilder struct {
	data []byte
}

func NewFrameBuilder() *FrameBuilder {
	return &FrameBuilder{}
}

// Header writes a 24 byte MAC header.
func (fb *FrameBuilder) Header(fc0, flags byte, a1, a2, a3 net.HardwareAddr) *FrameBuilder {
	fb.data = append(fb.data, buildDot11Header(fc0, flags, a1, a2, a3)...)
	return fb
}

// WDSHeader writes a 30 byte header carrying the fourth address.
func (fb *FrameBuilder) WDSHeader(fc0 byte, a1, a2, a3, a4 net.HardwareAddr) *FrameBuilder {
	fb.data = append(fb.data, buildDot11Header(fc0, 0x03, a1, a2, a3)...)
	fb.data = append(fb.data, a4...)
	return fb
}

// Beacon writes a beacon header from bssid with fixed fields and the SSID.
func (fb *FrameBuilder) Beacon(bssid net.HardwareAddr, ssid string) *FrameBuilder {
	fb.Header(0x80, 0x00, Broadcast, bssid, bssid)
	fb.BeaconFixed(100, 0x0411)
	return fb.IE(0x00, []byte(ssid))
}

// ProbeResponse is a beacon addressed to sta.
func (fb *FrameBuilder) ProbeResponse(bssid, sta net.HardwareAddr, ssid string) *FrameBuilder {
	fb.Header(0x50, 0x00, sta, bssid, bssid)
	fb.BeaconFixed(100, 0x0411)
	return fb.IE(0x00, []byte(ssid))
}

// BeaconFixed writes a zero timestamp, the interval and capability fields.
func (fb *FrameBuilder) BeaconFixed(interval, capInfo uint16) *FrameBuilder {
	fixed := make([]byte, 12)
	binary.LittleEndian.PutUint16(fixed[8:], interval)
	binary.LittleEndian.PutUint16(fixed[10:], capInfo)
	fb.data = append(fb.data, fixed...)
	return fb
}

// ProbeRequest writes a probe request from sa to bssid.
func (fb *FrameBuilder) ProbeRequest(sa, bssid net.HardwareAddr, ssid string) *FrameBuilder {
	fb.Header(0x40, 0x00, Broadcast, sa, bssid)
	return fb.IE(0x00, []byte(ssid))
}

// Data writes a data header. fc0 selects the subtype (0x08 Data, 0x48 Null,
// 0x88 QoS Data, 0xc8 QoS Null).
func (fb *FrameBuilder) Data(fc0 byte, toDS, fromDS bool, a1, a2, a3 net.HardwareAddr) *FrameBuilder {
	var flags byte
	if toDS {
		flags |= 0x01
	}
	if fromDS {
		flags |= 0x02
	}
	return fb.Header(fc0, flags, a1, a2, a3)
}

// IE appends an information element.
func (fb *FrameBuilder) IE(id byte, val []byte) *FrameBuilder {
	fb.data = append(fb.data, id, byte(len(val)))
	fb.data = append(fb.data, val...)
	return fb
}

// Rates appends a supported rates element.
func (fb *FrameBuilder) Rates(codes ...byte) *FrameBuilder {
	return fb.IE(0x01, codes)
}

// Raw appends bytes as they are.
func (fb *FrameBuilder) Raw(b ...byte) *FrameBuilder {
	fb.data = append(fb.data, b...)
	return fb
}

// Build returns a copy of the frame.
func (fb *FrameBuilder) Build() []byte {
	out := make([]byte, len(fb.data))
	copy(out, fb.data)
	return out
}

// Radiotap prefixes frame with a minimal radiotap header carrying channel
// frequency and antenna signal.
func Radiotap(frame []byte, freq uint16, signal int8) []byte {
	h := make([]byte, 13)
	binary.LittleEndian.PutUint16(h[2:], 13)
	binary.LittleEndian.PutUint32(h[4:], 0x28) // channel | dbm antenna signal
	binary.LittleEndian.PutUint16(h[8:], freq)
	binary.LittleEndian.PutUint16(h[10:], 0x00a0)
	h[12] = byte(signal)
	return append(h, frame...)
}

// RadiotapWithFCS is Radiotap with the flags field announcing a trailing FCS,
// which is appended as four dummy bytes.
func RadiotapWithFCS(frame []byte, freq uint16, signal int8) []byte {
	h := make([]byte, 15)
	binary.LittleEndian.PutUint16(h[2:], 15)
	binary.LittleEndian.PutUint32(h[4:], 0x2a) // flags | channel | dbm antenna signal
	h[8] = 0x10
	binary.LittleEndian.PutUint16(h[10:], freq)
	binary.LittleEndian.PutUint16(h[12:], 0x00a0)
	h[14] = byte(signal)
	out := append(h, frame...)
	return append(out, 0xde, 0xad, 0xbe, 0xef)
}

func buildDot11Header(fc0, flags byte, a1, a2, a3 net.HardwareAddr) []byte {
	h := make([]byte, 24)
	h[0] = fc0
	h[1] = flags
	copy(h[4:], a1)
	copy(h[10:], a2)
	copy(h[16:], a3)
	return h
}
