package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// ErrUnsupportedLinkType is returned for capture files that carry neither
// radiotap nor bare 802.11 frames.
var ErrUnsupportedLinkType = errors.New("unsupported link type")

const pcapngMagic = 0x0A0D0D0A

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// FileSource replays a pcap or pcapng capture. It returns io.EOF after the
// last packet.
type FileSource struct {
	file   *os.File
	reader packetReader
}

// OpenFile opens a capture file recorded on a monitor interface.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func newFileSource(f *os.File) (*FileSource, error) {
	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var r packetReader
	if uint32(magic[0])|uint32(magic[1])<<8|uint32(magic[2])<<16|uint32(magic[3])<<24 == pcapngMagic {
		r, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		r, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return nil, err
	}

	switch r.LinkType() {
	case layers.LinkTypeIEEE80211Radio, layers.LinkTypeIEEE802_11:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLinkType, r.LinkType())
	}
	return &FileSource{file: f, reader: r}, nil
}

func (s *FileSource) LinkType() layers.LinkType {
	return s.reader.LinkType()
}

// ReadFrame returns the next frame. Packets with a broken radiotap header
// yield ErrMalformedRadiotap; the next call continues with the following
// packet.
func (s *FileSource) ReadFrame() ([]byte, domain.RadioMetadata, error) {
	data, _, err := s.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, domain.RadioMetadata{}, io.EOF
		}
		return nil, domain.RadioMetadata{}, err
	}

	if s.reader.LinkType() == layers.LinkTypeIEEE802_11 {
		return data, domain.RadioMetadata{}, nil
	}
	return StripRadiotap(data)
}

func (s *FileSource) Close() {
	s.file.Close()
}
