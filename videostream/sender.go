// Package videostream publishes RGBA frames as zstd-compressed UDP datagrams
// and receives them back into images.
package videostream

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrClosed       = errors.New("sender closed")
	ErrSizeMismatch = errors.New("pixel buffer does not match frame size")
)

// Sender publishes frames of a fixed size under a source name.
type Sender struct {
	name   string
	id     uuid.UUID
	width  int
	height int
	async  bool

	conn    *net.UDPConn
	encoder *zstd.Encoder

	mu       sync.Mutex
	seq      uint32
	closed   bool
	inflight sync.WaitGroup
	asyncErr error
	packet   []byte
}

// NewSender dials addr, which may be a multicast group or a unicast
// receiver. In async mode SendFrame returns before the frame is on the wire
// and the caller must keep the pixel buffer untouched until the next call.
func NewSender(name string, addr netip.AddrPort, width, height int, async bool) (*Sender, error) {
	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	conn, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return nil, fmt.Errorf("could not dial udp address: %w", err)
	}
	_ = conn.SetWriteBuffer(4 * 1024 * 1024)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not create encoder: %w", err)
	}

	return &Sender{
		name:    name,
		id:      uuid.New(),
		width:   width,
		height:  height,
		async:   async,
		conn:    conn,
		encoder: encoder,
		packet:  make([]byte, maxPacketSize),
	}, nil
}

func (s *Sender) Name() string { return s.name }

func (s *Sender) Async() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.async
}

// SetAsync switches the send mode once any in-flight frame is out, after
// which the previously submitted buffer is free again.
func (s *Sender) SetAsync(async bool) {
	s.inflight.Wait()

	s.mu.Lock()
	s.async = async
	s.mu.Unlock()
}

// SendFrame publishes one frame of tightly packed RGBA pixels.
func (s *Sender) SendFrame(pix []byte, width, height int) error {
	if width != s.width || height != s.height || len(pix) != width*height*4 {
		return ErrSizeMismatch
	}

	// Only one frame is in flight at a time, mirroring a video sender that
	// holds on to the last submitted buffer.
	s.inflight.Wait()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	err := s.asyncErr
	s.asyncErr = nil
	s.seq++
	seq := s.seq
	async := s.async
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("could not send previous frame: %w", err)
	}

	if !async {
		return s.send(pix, seq)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.send(pix, seq); err != nil {
			s.mu.Lock()
			s.asyncErr = err
			s.mu.Unlock()
		}
	}()

	return nil
}

func (s *Sender) send(pix []byte, seq uint32) error {
	encoded := s.encoder.EncodeAll(pix, make([]byte, 0, len(pix)/4))

	h := header{
		Sender: s.id,
		Seq:    seq,
		Width:  uint16(s.width),
		Height: uint16(s.height),
	}

	return packetize(h, encoded, s.packet, func(b []byte) error {
		if _, err := s.conn.Write(b); err != nil {
			return fmt.Errorf("could not write packet: %w", err)
		}
		return nil
	})
}

func (s *Sender) Close() error {
	s.inflight.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.encoder.Close()
	return s.conn.Close()
}
