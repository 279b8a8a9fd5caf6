package render

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNotMapped is returned when the buffer to map holds no frame yet.
	ErrNotMapped = errors.New("pixel transfer buffer not mapped")

	ErrSizeMismatch = errors.New("pixel buffer size mismatch")
)

// ReadPixels copies src into dst as tightly packed RGBA rows.
func ReadPixels(src *image.RGBA, dst []byte) error {
	b := src.Bounds()
	row := b.Dx() * 4
	if len(dst) != row*b.Dy() {
		return fmt.Errorf("could not read %dx%d pixels into %d bytes: %w", b.Dx(), b.Dy(), len(dst), ErrSizeMismatch)
	}

	if src.Stride == row {
		copy(dst, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):])
		return nil
	}

	for y := 0; y < b.Dy(); y++ {
		o := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst[y*row:(y+1)*row], src.Pix[o:o+row])
	}

	return nil
}

// PixelTransfer overlaps readback of the current frame with consumption of
// the previous one using two buffers. Each Read writes the current frame into
// one buffer and maps the other, so callers always get the frame before.
// The buffer being written is never the one mapped.
type PixelTransfer struct {
	bufs   [2][]byte
	filled [2]bool
	index  int
}

func NewPixelTransfer(width, height int) *PixelTransfer {
	return &PixelTransfer{
		bufs: [2][]byte{
			make([]byte, width*height*4),
			make([]byte, width*height*4),
		},
	}
}

// Read starts the transfer of src and copies the previously transferred
// frame into dst. It returns ErrNotMapped on the very first call.
func (p *PixelTransfer) Read(src *image.RGBA, dst []byte) error {
	p.index = (p.index + 1) % 2
	next := (p.index + 1) % 2

	if err := ReadPixels(src, p.bufs[p.index]); err != nil {
		return fmt.Errorf("could not start pixel transfer: %w", err)
	}
	p.filled[p.index] = true

	if !p.filled[next] {
		return ErrNotMapped
	}
	if len(dst) != len(p.bufs[next]) {
		return fmt.Errorf("could not map %d bytes into %d: %w", len(p.bufs[next]), len(dst), ErrSizeMismatch)
	}
	copy(dst, p.bufs[next])

	return nil
}

// DoubleBuffer holds the two host-side pixel blocks of a network stream. An
// asynchronous sender keeps reading the block it was last given until the
// next send, so the block to fill is always the other one.
type DoubleBuffer struct {
	bufs  [2][]byte
	index int
}

func NewDoubleBuffer(width, height int) *DoubleBuffer {
	return &DoubleBuffer{
		bufs: [2][]byte{
			make([]byte, width*height*4),
			make([]byte, width*height*4),
		},
	}
}

// Back returns the index and block to fill for the next send. Synchronous
// senders always reuse block 0.
func (d *DoubleBuffer) Back(async bool) (int, []byte) {
	if !async {
		return 0, d.bufs[0]
	}
	return d.index, d.bufs[d.index]
}

// Swap records a completed send. The index only alternates for asynchronous
// senders.
func (d *DoubleBuffer) Swap(async bool) {
	if async {
		d.index = (d.index + 1) % 2
	}
}
