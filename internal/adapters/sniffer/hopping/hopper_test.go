package hopping

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSwitcher captures channel set calls
type MockSwitcher struct {
	mu         sync.Mutex
	calls      []int
	shouldFail bool
}

func (m *MockSwitcher) SetChannel(iface string, channel int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, channel)
	if m.shouldFail {
		return fmt.Errorf("mock failure")
	}
	return nil
}

func (m *MockSwitcher) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

func runHopper(t *testing.T, h *ChannelHopper, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(d + time.Second):
		t.Fatal("hopper did not stop after cancellation")
	}
}

func TestHopper_RoundRobin(t *testing.T) {
	mock := &MockSwitcher{}
	h := NewHopper("wlan0", []int{1, 6, 11}, 10*time.Millisecond, mock)

	runHopper(t, h, 55*time.Millisecond)

	calls := mock.Calls()
	require.GreaterOrEqual(t, len(calls), 3)
	wantSeq := []int{1, 6, 11}
	for i, ch := range calls {
		assert.Equal(t, wantSeq[i%len(wantSeq)], ch, "hop %d", i)
	}
}

func TestHopper_FirstHopIsImmediate(t *testing.T) {
	mock := &MockSwitcher{}
	h := NewHopper("wlan0", []int{36}, time.Hour, mock)

	runHopper(t, h, 20*time.Millisecond)
	assert.Equal(t, []int{36}, mock.Calls())
}

func TestHopper_CopiesChannelList(t *testing.T) {
	channels := []int{1, 6}
	h := NewHopper("wlan0", channels, time.Second, &MockSwitcher{})
	channels[0] = 99

	assert.Equal(t, []int{1, 6}, h.Channels())

	got := h.Channels()
	got[1] = 42
	assert.Equal(t, []int{1, 6}, h.Channels())
}

func TestHopper_EmptyChannels(t *testing.T) {
	mock := &MockSwitcher{}
	h := NewHopper("wlan0", nil, 10*time.Millisecond, mock)

	runHopper(t, h, 20*time.Millisecond)
	assert.Empty(t, mock.Calls())
}

func TestHopper_SwitcherErrors(t *testing.T) {
	mock := &MockSwitcher{shouldFail: true}
	h := NewHopper("wlan0", []int{1}, 5*time.Millisecond, mock)

	runHopper(t, h, 30*time.Millisecond)
	assert.Greater(t, len(mock.Calls()), 1, "hopper keeps retrying after errors")
}

func TestHopper_State(t *testing.T) {
	h := NewHopper("wlan0", []int{1}, 5*time.Millisecond, &MockSwitcher{})
	assert.Equal(t, StateIdle, h.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	assert.Eventually(t, func() bool { return h.State() == StateHopping }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, StateStopped, h.State())
	assert.Equal(t, "Stopped", h.State().String())

	assert.ErrorIs(t, h.Start(context.Background()), ErrAlreadyStarted)
}

func TestNewHopper_Defaults(t *testing.T) {
	h := NewHopper("wlan0", []int{1}, 0, nil)
	assert.Equal(t, time.Second, h.Dwell())
	assert.IsType(t, IWSwitcher{}, h.switcher)
}
