package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snifftest "github.com/lcalzada-xor/nearby/internal/adapters/sniffer/testing"
	"github.com/lcalzada-xor/nearby/internal/config"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

var (
	apMAC   = snifftest.MustMAC("00:11:22:33:44:55")
	staMAC  = snifftest.MustMAC("f0:99:bf:00:00:01")
	peerMAC = snifftest.MustMAC("aa:bb:cc:00:00:02")
)

const ouiFile = "00-11-22   (hex)\t\tAcme Networks\n" +
	"001122     (base 16)\t\tAcme Networks\n"

func writeCapture(t *testing.T, dir string, packets ...[]byte) string {
	t.Helper()
	path := filepath.Join(dir, "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeIEEE80211Radio))
	for _, p := range packets {
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(1700000000, 0), CaptureLength: len(p), Length: len(p)}
		require.NoError(t, w.WritePacket(ci, p))
	}
	return path
}

func offlineConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	beacon := snifftest.NewFrameBuilder().Beacon(apMAC, "Home").Rates(0x82, 0x0c).Build()
	data := snifftest.NewFrameBuilder().Data(0x88, true, false, apMAC, staMAC, peerMAC).Raw(0, 0).Build()
	probe := snifftest.NewFrameBuilder().ProbeRequest(staMAC, snifftest.Broadcast, "").Build()
	capPath := writeCapture(t, dir,
		snifftest.Radiotap(beacon, 2437, -40),
		[]byte{0x00, 0x00, 0x40, 0x00},
		snifftest.Radiotap(data, 2437, -61),
		snifftest.Radiotap(probe, 2412, -50),
	)

	ouiPath := filepath.Join(dir, "oui.txt")
	require.NoError(t, os.WriteFile(ouiPath, []byte(ouiFile), 0o644))

	base := []string{"-pcap", capPath, "-oui", ouiPath, "-o", filepath.Join(dir, "out.json"), "-duration", "5s"}
	cfg, err := config.Load(append(base, args...))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func runApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	application, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	assert.Nil(t, application.Hopper, "no hopping when replaying a file")
	require.NoError(t, application.Run(context.Background()))
	return application
}

func TestRun_OfflineTopology(t *testing.T) {
	cfg := offlineConfig(t)
	runApp(t, cfg)

	raw, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	var doc domain.NetworkCollection
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Collection, 1)

	ap := doc.Collection[0]
	assert.Equal(t, "Home", ap.SSID)
	assert.Equal(t, "Acme Networks", ap.Label)
	assert.Equal(t, uint8(6), ap.CurrentChannel)
	assert.Equal(t, int8(-40), ap.Signal)
	assert.Len(t, ap.Nodes, 3)
	assert.Len(t, ap.Links, 2)
}

func TestRun_OfflinePeople(t *testing.T) {
	cfg := offlineConfig(t, "-people")
	application := runApp(t, cfg)

	raw, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	var people []domain.Person
	require.NoError(t, json.Unmarshal(raw, &people))
	require.Len(t, people, 1)
	assert.Equal(t, "f0:99:bf:00:00:01", people[0].MAC)
	assert.Equal(t, "Apple, Inc.", people[0].Vendor)
	assert.InDelta(t, 3.127, people[0].Distance, 0.001)

	snap, ok := application.Store.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.Dropped)
}

func TestRun_SQLiteOUIRegistry(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.OUIDatabase = filepath.Join(t.TempDir(), "oui", "registry.db")
	runApp(t, cfg)

	raw, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Acme Networks")
	assert.FileExists(t, cfg.OUIDatabase)
}

func TestNew_Errors(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.PcapPath = filepath.Join(t.TempDir(), "missing.pcap")
	application, err := New(cfg, nil)
	require.Error(t, err)
	application.Close()

	cfg = offlineConfig(t)
	cfg.Format = "xml"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_MissingOUIFileIsNotFatal(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.OUIFile = filepath.Join(t.TempDir(), "absent.txt")
	application, err := New(cfg, nil)
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, "Apple, Inc.", application.Vendors.Lookup("f0:99:bf:00:00:01"))
}

func TestDuration_ScaledByHopList(t *testing.T) {
	cfg := offlineConfig(t, "-scale-duration", "-duration", "2s")
	application, err := New(cfg, nil)
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, 2*time.Second, application.duration(), "no hopper, no scaling")
}
