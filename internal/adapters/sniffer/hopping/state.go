package hopping

import "sync/atomic"

// HopperState represents the current state of the channel hopper.
type HopperState int32

const (
	StateIdle    HopperState = iota // created, Start not called yet
	StateHopping                    // cycling through channels
	StateStopped                    // context cancelled, will not hop again
)

func (s HopperState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateHopping:
		return "Hopping"
	case StateStopped:
		return "Stopped"
	}
	return "Unknown"
}

// AtomicState wraps atomic operations for HopperState
type AtomicState struct {
	v atomic.Int32
}

func (a *AtomicState) Set(s HopperState) {
	a.v.Store(int32(s))
}

func (a *AtomicState) Get() HopperState {
	return HopperState(a.v.Load())
}

func (a *AtomicState) CompareAndSwap(old, new HopperState) bool {
	return a.v.CompareAndSwap(int32(old), int32(new))
}
