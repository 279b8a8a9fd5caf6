package preview

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/dusxproductions/kinect2share/kinect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilesCoverGrid(t *testing.T) {
	assert.Equal(t, image.Rect(0, 0, 640, 530), TileDepth.Bounds())
	assert.Equal(t, image.Rect(1280, 530, 1920, 1060), TileBodies.Bounds())

	for a := TileDepth; a <= TileBodies; a++ {
		assert.True(t, a.Bounds().In(image.Rect(0, 0, Width, Height)))
		for b := a + 1; b <= TileBodies; b++ {
			assert.True(t, a.Bounds().Intersect(b.Bounds()).Empty(), "%d overlaps %d", a, b)
		}
	}

	c := colorBounds()
	assert.Equal(t, 360, c.Dy())
	assert.True(t, c.In(TileColor.Bounds()))
}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestComposeDrawsTiles(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	Compose(dst, Frame{
		Depth:  uniform(kinect.DepthWidth, kinect.DepthHeight, red),
		Color:  uniform(kinect.ColorWidth, kinect.ColorHeight, blue),
		Keyed:  uniform(kinect.DepthWidth, kinect.DepthHeight, red),
		Status: Status{HaveAllStreams: true},
	})

	assert.Equal(t, red, dst.RGBAAt(320, 300))
	// Letterbox bars of the color tile stay black.
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(960, 40))
	assert.Equal(t, blue, dst.RGBAAt(960, 265))
	// Keyed tile hidden without a keyed sink.
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(1600, 450))
}

func TestComposeKeyedShown(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	green := color.RGBA{G: 255, A: 255}

	Compose(dst, Frame{
		Keyed:  uniform(kinect.DepthWidth, kinect.DepthHeight, green),
		Status: Status{KeyedShown: true},
	})
	assert.Equal(t, green, dst.RGBAAt(1600, 450))
}

func TestComposeDrawsBodies(t *testing.T) {
	src := kinect.NewSynthetic(kinect.SyntheticOptions{Bodies: 1})
	require.NoError(t, src.Update())

	f := Frame{Bodies: src.Frame().Bodies}
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	Compose(dst, f)

	empty := image.NewRGBA(image.Rect(0, 0, Width, Height))
	Compose(empty, Frame{})

	r := TileBodies.Bounds()
	changed := 0
	for y := r.Min.Y + 60; y < r.Max.Y-60; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if dst.RGBAAt(x, y) != empty.RGBAAt(x, y) {
				changed++
			}
		}
	}
	assert.Positive(t, changed)
}

func TestLine(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c := color.RGBA{R: 1, A: 255}

	line(dst, dst.Bounds(), image.Pt(0, 0), image.Pt(9, 9), c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, c, dst.RGBAAt(i, i))
	}

	// Clipped points are dropped.
	line(dst, image.Rect(0, 0, 5, 5), image.Pt(0, 9), image.Pt(9, 9), c)
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(8, 9))
}

func TestShowBeforeDisplay(t *testing.T) {
	w := NewWindow(Title, 4, 2)
	img := uniform(4, 2, color.RGBA{R: 9, A: 255})

	w.Show(img)
	assert.Equal(t, byte(9), w.pending[0])
	assert.True(t, w.dirty)
}
