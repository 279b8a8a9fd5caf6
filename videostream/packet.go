package videostream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	headerSize = 32
	// maxPacketSize keeps datagrams under a typical ethernet MTU.
	maxPacketSize  = 1400
	maxPayloadSize = maxPacketSize - headerSize
)

var (
	magic = [4]byte{'K', 'V', '2', 'V'}

	errShortPacket = errors.New("packet shorter than header")
	errBadMagic    = errors.New("packet magic mismatch")
)

// header prefixes every datagram:
//
//	magic[4] sender[16] seq[4] chunk[2] chunks[2] width[2] height[2]
type header struct {
	Sender uuid.UUID
	Seq    uint32
	Chunk  uint16
	Chunks uint16
	Width  uint16
	Height uint16
}

func (h header) put(b []byte) {
	copy(b[0:4], magic[:])
	copy(b[4:20], h.Sender[:])
	binary.BigEndian.PutUint32(b[20:24], h.Seq)
	binary.BigEndian.PutUint16(b[24:26], h.Chunk)
	binary.BigEndian.PutUint16(b[26:28], h.Chunks)
	binary.BigEndian.PutUint16(b[28:30], h.Width)
	binary.BigEndian.PutUint16(b[30:32], h.Height)
}

func parseHeader(b []byte) (header, []byte, error) {
	if len(b) < headerSize {
		return header{}, nil, errShortPacket
	}
	if [4]byte(b[0:4]) != magic {
		return header{}, nil, errBadMagic
	}

	h := header{
		Seq:    binary.BigEndian.Uint32(b[20:24]),
		Chunk:  binary.BigEndian.Uint16(b[24:26]),
		Chunks: binary.BigEndian.Uint16(b[26:28]),
		Width:  binary.BigEndian.Uint16(b[28:30]),
		Height: binary.BigEndian.Uint16(b[30:32]),
	}
	copy(h.Sender[:], b[4:20])

	if h.Chunks == 0 || h.Chunk >= h.Chunks {
		return header{}, nil, fmt.Errorf("invalid chunk %d of %d", h.Chunk, h.Chunks)
	}

	return h, b[headerSize:], nil
}

// packetize splits a compressed frame into datagrams, calling emit for each.
// The slice passed to emit is reused between calls.
func packetize(h header, payload []byte, buf []byte, emit func([]byte) error) error {
	chunks := (len(payload) + maxPayloadSize - 1) / maxPayloadSize
	if chunks == 0 {
		chunks = 1
	}
	if chunks > 0xffff {
		return fmt.Errorf("frame too large: %d bytes", len(payload))
	}
	h.Chunks = uint16(chunks)

	for i := 0; i < chunks; i++ {
		start := i * maxPayloadSize
		end := min(start+maxPayloadSize, len(payload))

		h.Chunk = uint16(i)
		h.put(buf[:headerSize])
		n := copy(buf[headerSize:], payload[start:end])
		if err := emit(buf[:headerSize+n]); err != nil {
			return err
		}
	}

	return nil
}

// assembler rebuilds compressed frames from datagrams. Only the newest frame
// of the most recent sender is assembled; incomplete older frames are
// dropped.
type assembler struct {
	sender   uuid.UUID
	seq      uint32
	started  bool
	complete bool
	chunks   [][]byte
	received int
	width    uint16
	height   uint16
}

// add returns the compressed frame once all of its chunks arrived.
func (a *assembler) add(packet []byte) ([]byte, int, int, bool, error) {
	h, payload, err := parseHeader(packet)
	if err != nil {
		return nil, 0, 0, false, err
	}

	switch {
	case !a.started || h.Sender != a.sender || h.Seq > a.seq:
		a.reset(h)
	case h.Seq < a.seq, a.complete:
		return nil, 0, 0, false, nil
	}

	if int(h.Chunks) != len(a.chunks) {
		return nil, 0, 0, false, fmt.Errorf("chunk count changed within frame %d", h.Seq)
	}
	if a.chunks[h.Chunk] != nil {
		return nil, 0, 0, false, nil
	}

	a.chunks[h.Chunk] = append([]byte(nil), payload...)
	a.received++
	if a.received < len(a.chunks) {
		return nil, 0, 0, false, nil
	}

	size := 0
	for _, c := range a.chunks {
		size += len(c)
	}
	frame := make([]byte, 0, size)
	for _, c := range a.chunks {
		frame = append(frame, c...)
	}
	// Late duplicates of a completed frame must not complete it twice.
	a.complete = true
	a.chunks = nil

	return frame, int(h.Width), int(h.Height), true, nil
}

func (a *assembler) reset(h header) {
	a.sender = h.Sender
	a.seq = h.Seq
	a.started = true
	a.complete = false
	a.chunks = make([][]byte, h.Chunks)
	a.received = 0
	a.width = h.Width
	a.height = h.Height
}
