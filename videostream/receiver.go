package videostream

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const readTimeout = 500 * time.Millisecond

// Receiver assembles frames published by a Sender.
type Receiver struct {
	conn    *net.UDPConn
	decoder *zstd.Decoder

	frameMu sync.RWMutex
	frame   *image.RGBA
	frames  uint64
}

// NewReceiver joins addr when it is a multicast group and listens on it
// otherwise.
func NewReceiver(addr netip.AddrPort) (*Receiver, error) {
	var (
		conn *net.UDPConn
		err  error
	)
	if addr.Addr().IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp4", nil, net.UDPAddrFromAddrPort(addr))
	} else {
		conn, err = net.ListenUDP("udp4", net.UDPAddrFromAddrPort(addr))
	}
	if err != nil {
		return nil, fmt.Errorf("could not listen on udp address: %w", err)
	}
	_ = conn.SetReadBuffer(4 * 1024 * 1024)

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not create decoder: %w", err)
	}

	return &Receiver{
		conn:    conn,
		decoder: decoder,
	}, nil
}

func (r *Receiver) LocalAddr() netip.AddrPort {
	return r.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

func (r *Receiver) Close() error {
	r.decoder.Close()
	return r.conn.Close()
}

// Frame returns the most recent complete frame and the number of frames
// received so far. The returned image is never modified afterwards.
func (r *Receiver) Frame() (*image.RGBA, uint64) {
	r.frameMu.RLock()
	defer r.frameMu.RUnlock()

	return r.frame, r.frames
}

func (r *Receiver) Run(ctx context.Context) error {
	var asm assembler
	b := make([]byte, 64*1024)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context canceled: %w", ctx.Err())
		default:
		}

		_ = r.conn.SetReadDeadline(time.Now().Add(readTimeout))
		n, err := r.conn.Read(b)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("connection closed: %w", err)
			}
			return fmt.Errorf("could not read packet: %w", err)
		}

		payload, width, height, ok, err := asm.add(b[:n])
		if err != nil {
			slog.Debug("dropping packet", "error", err)
			continue
		}
		if !ok {
			continue
		}

		if err := r.store(payload, width, height); err != nil {
			slog.Warn("could not decode frame", "error", err)
		}
	}
}

func (r *Receiver) store(payload []byte, width, height int) error {
	size := width * height * 4
	decoded, err := r.decoder.DecodeAll(payload, make([]byte, 0, size))
	if err != nil {
		return fmt.Errorf("could not decompress frame: %w", err)
	}
	if len(decoded) != size {
		return fmt.Errorf("decoded %d bytes for a %dx%d frame", len(decoded), width, height)
	}

	img := &image.RGBA{
		Pix:    decoded,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	r.frameMu.Lock()
	r.frame = img
	r.frames++
	r.frameMu.Unlock()

	return nil
}
