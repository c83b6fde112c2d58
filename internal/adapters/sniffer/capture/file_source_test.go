package capture_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/capture"
	snifftest "github.com/lcalzada-xor/nearby/internal/adapters/sniffer/testing"
)

func writePcap(t *testing.T, linkType layers.LinkType, packets ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, linkType))
	for _, p := range packets {
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(1700000000, 0), CaptureLength: len(p), Length: len(p)}
		require.NoError(t, w.WritePacket(ci, p))
	}
	return path
}

func TestFileSource_Radiotap(t *testing.T) {
	beacon := snifftest.NewFrameBuilder().Beacon(bssid, "Home").Build()
	path := writePcap(t, layers.LinkTypeIEEE80211Radio,
		snifftest.Radiotap(beacon, 2437, -42),
		[]byte{0, 0, 0x40, 0},
		snifftest.RadiotapWithFCS(beacon, 2412, -60),
	)

	src, err := capture.OpenFile(path)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, layers.LinkTypeIEEE80211Radio, src.LinkType())

	frame, radio, err := src.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, beacon, frame)
	assert.Equal(t, uint8(6), radio.Channel)
	assert.Equal(t, int8(-42), radio.Signal)

	_, _, err = src.ReadFrame()
	assert.ErrorIs(t, err, capture.ErrMalformedRadiotap)

	frame, radio, err = src.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, beacon, frame)
	assert.Equal(t, uint8(1), radio.Channel)

	_, _, err = src.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileSource_Bare80211(t *testing.T) {
	beacon := snifftest.NewFrameBuilder().Beacon(bssid, "Home").Build()
	path := writePcap(t, layers.LinkTypeIEEE802_11, beacon)

	src, err := capture.OpenFile(path)
	require.NoError(t, err)
	defer src.Close()

	frame, radio, err := src.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, beacon, frame)
	assert.Zero(t, radio)
}

func TestFileSource_UnsupportedLinkType(t *testing.T) {
	path := writePcap(t, layers.LinkTypeEthernet)
	_, err := capture.OpenFile(path)
	assert.ErrorIs(t, err, capture.ErrUnsupportedLinkType)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := capture.OpenFile(filepath.Join(t.TempDir(), "missing.pcap"))
	assert.Error(t, err)
}
