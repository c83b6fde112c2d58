package snifftest

import (
	"io"
	"sync"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// Frame is one scripted read.
type Frame struct {
	Data  []byte
	Radio domain.RadioMetadata
	Err   error
}

// Timeout is a scripted read timeout.
var Timeout = Frame{Err: capture.ErrTimeout}

// Source replays scripted frames, then returns End (io.EOF by default).
type Source struct {
	mu     sync.Mutex
	frames []Frame
	End    error
	Reads  int
	Closed bool
}

func NewSource(frames ...Frame) *Source {
	return &Source{frames: frames, End: io.EOF}
}

func (s *Source) ReadFrame() ([]byte, domain.RadioMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Reads++
	if len(s.frames) == 0 {
		return nil, domain.RadioMetadata{}, s.End
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f.Data, f.Radio, f.Err
}

func (s *Source) Close() {
	s.mu.Lock()
	s.Closed = true
	s.mu.Unlock()
}
