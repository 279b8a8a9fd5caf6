// Package composite builds the keyed foreground image: color pixels inside
// tracked body silhouettes, transparent everywhere else.
package composite

import (
	"fmt"
	"image"
	"math"

	"github.com/dusxproductions/kinect2share/coordmap"
)

// Keyer owns the foreground image. The image is rewritten by every call to
// Composite and must be treated as read-only by consumers.
type Keyer struct {
	img *image.RGBA
}

func NewKeyer(width, height int) *Keyer {
	return &Keyer{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

func (k *Keyer) Image() *image.RGBA {
	return k.img
}

// Clear makes the whole foreground transparent.
func (k *Keyer) Clear() {
	clear(k.img.Pix)
}

// Composite keys color into the foreground. A depth pixel is kept when its
// body-index value is below bodyCount and its mapped color coordinate,
// floored, lies inside color. No interpolation is done.
func (k *Keyer) Composite(bodyIndex []uint8, coords []coordmap.Point, color *image.RGBA, bodyCount int) error {
	b := k.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(bodyIndex) != w*h || len(coords) != w*h {
		return fmt.Errorf("could not composite %dx%d foreground from %d body-index and %d mapped pixels", w, h, len(bodyIndex), len(coords))
	}

	cb := color.Bounds()
	cw, ch := float64(cb.Dx()), float64(cb.Dy())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			index := y*w + x
			o := y*k.img.Stride + x*4
			dst := k.img.Pix[o : o+4 : o+4]
			dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0

			if int(bodyIndex[index]) >= bodyCount {
				continue
			}

			mx := math.Floor(float64(coords[index].X))
			my := math.Floor(float64(coords[index].Y))
			// Written this way so NaN coordinates are rejected too.
			if !(mx >= 0 && my >= 0 && mx < cw && my < ch) {
				continue
			}

			src := color.PixOffset(cb.Min.X+int(mx), cb.Min.Y+int(my))
			copy(dst, color.Pix[src:src+4])
		}
	}

	return nil
}
