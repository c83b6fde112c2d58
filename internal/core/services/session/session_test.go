package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/capture"
	snifftest "github.com/lcalzada-xor/nearby/internal/adapters/sniffer/testing"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
	"github.com/lcalzada-xor/nearby/internal/core/services/mapper"
)

var (
	apMAC    = snifftest.MustMAC("00:11:22:33:44:55")
	phoneMAC = snifftest.MustMAC("f0:99:bf:00:00:01")
	laptop   = snifftest.MustMAC("aa:bb:cc:00:00:02")
)

type vendors map[string]string

func (v vendors) Lookup(mac string) string { return v[mac] }

type recorder struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
}

func (r *recorder) Publish(s domain.Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func radio(signal int8) domain.RadioMetadata {
	return domain.RadioMetadata{Signal: signal, Frequency: 2437, Channel: 6}
}

func beaconHome() snifftest.Frame {
	return snifftest.Frame{
		Data:  snifftest.NewFrameBuilder().Beacon(apMAC, "Home").Rates(0x82, 0x0c).Build(),
		Radio: radio(-40),
	}
}

func qosData() snifftest.Frame {
	// to_ds: bssid=addr1, dst=addr2, src=addr3
	return snifftest.Frame{
		Data:  snifftest.NewFrameBuilder().Data(0x88, true, false, apMAC, phoneMAC, laptop).Raw(0, 0).Build(),
		Radio: radio(-60),
	}
}

func TestRun_BeaconThenQoSData(t *testing.T) {
	src := snifftest.NewSource(beaconHome(), qosData())
	m := mapper.New(vendors{"00:11:22:33:44:55": "Acme"}, mapper.ModeTopology, nil)
	pub := &recorder{}

	s := New(src, m, Options{Publisher: pub, SourceName: "test"})
	require.NoError(t, s.Run(context.Background()))

	snap, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, s.ID(), snap.SessionID)
	assert.Equal(t, uint64(2), snap.Frames)
	assert.Zero(t, snap.Dropped)
	require.Len(t, snap.Collections, 1)

	c := snap.Collections[0]
	assert.Equal(t, "Home", c.SSID)
	assert.Equal(t, "00:11:22:33:44:55", c.RouterID)
	assert.Equal(t, "Acme", c.Label)
	assert.Equal(t, int8(-40), c.Signal)
	assert.Equal(t, uint8(6), c.CurrentChannel)
	assert.Equal(t, []domain.Node{
		{MAC: "00:11:22:33:44:55", Properties: domain.Properties{Vendor: "Acme"}},
		{MAC: "aa:bb:cc:00:00:02", Properties: domain.Properties{Signal: -60}},
		{MAC: "f0:99:bf:00:00:01", Properties: domain.Properties{Signal: -60}},
	}, c.Nodes)
	assert.Equal(t, []domain.Link{
		{Source: "aa:bb:cc:00:00:02", Target: "00:11:22:33:44:55"},
		{Source: "f0:99:bf:00:00:01", Target: "00:11:22:33:44:55"},
	}, c.Links)

	// One snapshot for the new access point, one at the end.
	require.Len(t, pub.snaps, 2)
	assert.Len(t, pub.snaps[0].Collections, 1)
	assert.Equal(t, snap.Frames, pub.snaps[1].Frames)
	assert.False(t, src.Closed, "the session does not own the source")
}

func TestRun_DropsBadFramesAndContinues(t *testing.T) {
	beacon := beaconHome()
	bad := []snifftest.Frame{
		{Data: beacon.Data[:10]},
		{Data: append([]byte{0x81}, beacon.Data[1:]...)},
		{Err: capture.ErrMalformedRadiotap},
		snifftest.Timeout,
	}
	src := snifftest.NewSource(append(bad, beacon)...)
	m := mapper.New(vendors{}, mapper.ModeTopology, nil)

	s := New(src, m, Options{})
	require.NoError(t, s.Run(context.Background()))

	snap, _ := s.Result()
	assert.Equal(t, uint64(3), snap.Dropped)
	assert.Equal(t, uint64(4), snap.Frames)
	assert.Len(t, snap.Collections, 1)
}

func TestRun_FatalCaptureError(t *testing.T) {
	boom := errors.New("device removed")
	src := snifftest.NewSource(beaconHome(), snifftest.Frame{Err: boom})
	m := mapper.New(vendors{}, mapper.ModeTopology, nil)

	s := New(src, m, Options{})
	err := s.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "capture: ")

	snap, ok := s.Result()
	require.True(t, ok)
	assert.Len(t, snap.Collections, 1, "state mapped before the failure is kept")
}

func TestRun_DurationBound(t *testing.T) {
	src := snifftest.NewSource()
	src.End = capture.ErrTimeout
	m := mapper.New(vendors{}, mapper.ModeTopology, nil)

	s := New(src, m, Options{Duration: 20 * time.Millisecond})
	start := time.Now()
	require.NoError(t, s.Run(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
	assert.Greater(t, src.Reads, 1)
}

func TestRun_Cancelled(t *testing.T) {
	src := snifftest.NewSource(beaconHome())
	m := mapper.New(vendors{}, mapper.ModeTopology, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(src, m, Options{})
	require.NoError(t, s.Run(ctx))
	assert.Zero(t, src.Reads)
}

func TestRun_PeopleMode(t *testing.T) {
	probe := snifftest.Frame{
		Data:  snifftest.NewFrameBuilder().ProbeRequest(phoneMAC, snifftest.Broadcast, "").Build(),
		Radio: domain.RadioMetadata{Signal: -50, Frequency: 2412, Channel: 1},
	}
	src := snifftest.NewSource(beaconHome(), probe, probe)
	m := mapper.New(vendors{"f0:99:bf:00:00:01": "Apple, Inc."}, mapper.ModePeople, nil)
	pub := &recorder{}

	s := New(src, m, Options{Publisher: pub})
	require.NoError(t, s.Run(context.Background()))

	snap, _ := s.Result()
	assert.True(t, snap.PeopleMode)
	assert.Empty(t, snap.Collections)
	require.Len(t, snap.People, 1)
	assert.Equal(t, "Apple, Inc.", snap.People[0].Vendor)
	assert.InDelta(t, 3.126962669351452, snap.People[0].Distance, 1e-6)
	assert.Len(t, pub.snaps, 2, "only the first sighting and the final snapshot are published")
}

func TestResult_BeforeRun(t *testing.T) {
	s := New(snifftest.NewSource(), mapper.New(vendors{}, mapper.ModeTopology, nil), Options{})
	_, ok := s.Result()
	assert.False(t, ok)
}
