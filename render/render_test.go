package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

type uniform struct {
	w, h int
	c    color.RGBA
}

func (u uniform) Width() int  { return u.w }
func (u uniform) Height() int { return u.h }
func (u uniform) Draw(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r, image.NewUniform(u.c), image.Point{}, draw.Over)
}

func TestTargetRender(t *testing.T) {
	t.Parallel()

	target := NewTarget(4, 2)
	assert.Equal(t, 4, target.Width())
	assert.Equal(t, 2, target.Height())

	target.Render(uniform{4, 2, color.RGBA{1, 2, 3, 255}})
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, target.Image().RGBAAt(3, 1))

	target.Render(uniform{4, 2, color.RGBA{}})
	assert.Equal(t, color.RGBA{}, target.Image().RGBAAt(3, 1), "render clears the previous frame")
}

func TestReadPixels(t *testing.T) {
	t.Parallel()

	src := filled(3, 2, 9)
	dst := make([]byte, 3*2*4)
	require.NoError(t, ReadPixels(src, dst))
	for _, b := range dst {
		assert.Equal(t, uint8(9), b)
	}

	assert.ErrorIs(t, ReadPixels(src, make([]byte, 5)), ErrSizeMismatch)
}

func TestReadPixelsSubImage(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(2, 2, color.RGBA{7, 7, 7, 7})
	sub := src.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)

	dst := make([]byte, 2*2*4)
	require.NoError(t, ReadPixels(sub, dst))
	assert.Equal(t, []byte{7, 7, 7, 7}, dst[:4])
	assert.Equal(t, []byte{0, 0, 0, 0}, dst[4:8])
}

func TestPixelTransferLagsOneFrame(t *testing.T) {
	t.Parallel()

	p := NewPixelTransfer(2, 2)
	dst := make([]byte, 2*2*4)

	assert.ErrorIs(t, p.Read(filled(2, 2, 1), dst), ErrNotMapped, "nothing to map on the first frame")

	require.NoError(t, p.Read(filled(2, 2, 2), dst))
	assert.Equal(t, uint8(1), dst[0], "second read maps the first frame")

	require.NoError(t, p.Read(filled(2, 2, 3), dst))
	assert.Equal(t, uint8(2), dst[0])

	require.NoError(t, p.Read(filled(2, 2, 4), dst))
	assert.Equal(t, uint8(3), dst[0])
}

func TestPixelTransferSizeMismatch(t *testing.T) {
	t.Parallel()

	p := NewPixelTransfer(2, 2)
	assert.ErrorIs(t, p.Read(filled(3, 3, 1), make([]byte, 16)), ErrSizeMismatch)
}

func TestDoubleBufferAsyncAlternates(t *testing.T) {
	t.Parallel()

	d := NewDoubleBuffer(1, 1)
	var got []int
	for i := 0; i < 6; i++ {
		idx, buf := d.Back(true)
		assert.Len(t, buf, 4)
		got = append(got, idx)
		d.Swap(true)
	}

	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, got)
}

func TestDoubleBufferSyncStaysOnZero(t *testing.T) {
	t.Parallel()

	d := NewDoubleBuffer(1, 1)
	for i := 0; i < 4; i++ {
		idx, _ := d.Back(false)
		assert.Equal(t, 0, idx)
		d.Swap(false)
	}
}

func TestDoubleBufferBlocksAreDistinct(t *testing.T) {
	t.Parallel()

	d := NewDoubleBuffer(1, 1)
	_, a := d.Back(true)
	d.Swap(true)
	_, b := d.Back(true)

	a[0] = 1
	assert.Zero(t, b[0])
}
