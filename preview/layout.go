// Package preview composes the operator preview and shows it in a window.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/dusxproductions/kinect2share/kinect"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 1920
	Height = 1080

	tileWidth  = Width / 3
	tileHeight = tileWidth * kinect.DepthHeight / kinect.DepthWidth
)

// Tile names a slot of the 3x2 preview grid.
type Tile int

const (
	TileDepth Tile = iota
	TileColor
	TileKeyed
	TileInfrared
	TileCutout
	TileBodies
)

// Bounds returns the rectangle of t inside the preview canvas.
func (t Tile) Bounds() image.Rectangle {
	col, row := int(t)%3, int(t)/3
	origin := image.Pt(col*tileWidth, row*tileHeight)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tileWidth, tileHeight))}
}

// colorBounds letterboxes the 16:9 color stream inside its tile.
func colorBounds() image.Rectangle {
	r := TileColor.Bounds()
	h := tileWidth * kinect.ColorHeight / kinect.ColorWidth
	top := r.Min.Y + (tileHeight-h)/2
	return image.Rect(r.Min.X, top, r.Max.X, top+h)
}

// Status carries the text overlays of a frame.
type Status struct {
	FPS                float64
	HaveAllStreams     bool
	TrackedBodies      int
	NDIRestartRequired bool
	// KeyedShown is false when no sink takes the keyed stream, in which
	// case a hint replaces the keyed tile.
	KeyedShown bool
}

// Frame is everything drawn in one preview frame. Nil images leave their
// tile black.
type Frame struct {
	Depth    image.Image
	Color    image.Image
	Keyed    image.Image
	Infrared image.Image
	Cutout   image.Image
	Bodies   []kinect.Body
	Status   Status
}

var (
	jointColor   = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	boneColor    = color.RGBA{G: 255, B: 128, A: 255}
	textColor    = color.White
	textBg       = color.Black
	warningColor = color.RGBA{R: 255, A: 255}
)

// Compose draws f onto dst, which must be Width x Height.
func Compose(dst *image.RGBA, f Frame) {
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	scale(dst, TileDepth.Bounds(), f.Depth)
	scale(dst, colorBounds(), f.Color)
	scale(dst, TileInfrared.Bounds(), f.Infrared)
	scale(dst, TileCutout.Bounds(), f.Cutout)
	if f.Status.KeyedShown {
		scale(dst, TileKeyed.Bounds(), f.Keyed)
	}
	drawBodies(dst, TileBodies.Bounds(), f.Bodies)

	s := f.Status
	depth, col, keyed := TileDepth.Bounds(), TileColor.Bounds(), TileKeyed.Bounds()
	ir, cut, bodies := TileInfrared.Bounds(), TileCutout.Bounds(), TileBodies.Bounds()

	label(dst, depth.Min.Add(image.Pt(20, 20)), textColor, "Depthmap")
	label(dst, col.Min.Add(image.Pt(20, 20)), textColor, "Color : HD 1920x1080")
	label(dst, keyed.Min.Add(image.Pt(20, 20)), textColor, "Keyed FX : cpu heavy")
	label(dst, ir.Min.Add(image.Pt(20, 20)), textColor, "Infrared")
	label(dst, cut.Min.Add(image.Pt(20, 20)), textColor, "BnW : body outlines")
	label(dst, bodies.Min.Add(image.Pt(20, 20)), textColor,
		"Bodies : coordinates -> OSC",
		fmt.Sprintf("Tracked bodies: %d", s.TrackedBodies),
	)

	if !s.KeyedShown {
		label(dst, keyed.Min.Add(image.Pt(20, tileHeight/2-60)), textColor,
			"Keyed image only shown when",
			"a keyed sink is enabled",
			"and a body is being tracked.",
		)
	}

	status := []string{fmt.Sprintf("fps : %.1f", s.FPS)}
	if !s.HaveAllStreams {
		status = append(status, "Not all streams detected!")
	}
	label(dst, image.Pt(20, 2*tileHeight-50), textColor, status...)

	if s.NDIRestartRequired {
		label(dst, image.Pt(20, 2*tileHeight-10), warningColor,
			"The application must be relaunched to allow the NDI functions.")
	}
}

func scale(dst *image.RGBA, r image.Rectangle, src image.Image) {
	if src == nil {
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}

// label draws lines of text over a black box, top-left anchored at p.
func label(dst *image.RGBA, p image.Point, fg color.Color, lines ...string) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: face}
	for i, line := range lines {
		top := p.Y + i*lineHeight
		w := d.MeasureString(line).Ceil()
		box := image.Rect(p.X-2, top, p.X+w+2, top+lineHeight)
		draw.Draw(dst, box, image.NewUniform(textBg), image.Point{}, draw.Src)

		d.Dot = fixed.P(p.X, top+face.Metrics().Ascent.Ceil())
		d.DrawString(line)
	}
}

// drawBodies projects joints from depth space into r.
func drawBodies(dst *image.RGBA, r image.Rectangle, bodies []kinect.Body) {
	project := func(j kinect.Joint) image.Point {
		return image.Pt(
			r.Min.X+int(j.DepthX*float32(r.Dx())/kinect.DepthWidth),
			r.Min.Y+int(j.DepthY*float32(r.Dy())/kinect.DepthHeight),
		)
	}

	for i := range bodies {
		b := &bodies[i]
		if !b.Tracked || len(b.Joints) == 0 {
			continue
		}

		for _, bone := range kinect.Bones {
			from, ok := b.Joint(bone[0])
			if !ok || from.TrackingState == kinect.TrackingStateNotTracked {
				continue
			}
			to, ok := b.Joint(bone[1])
			if !ok || to.TrackingState == kinect.TrackingStateNotTracked {
				continue
			}
			line(dst, r, project(from), project(to), boneColor)
		}
		for _, j := range b.Joints {
			if j.TrackingState == kinect.TrackingStateNotTracked {
				continue
			}
			p := project(j)
			dot := image.Rect(p.X-2, p.Y-2, p.X+3, p.Y+3).Intersect(r)
			draw.Draw(dst, dot, image.NewUniform(jointColor), image.Point{}, draw.Src)
		}
	}
}

// line draws a clipped one pixel wide segment.
func line(dst *image.RGBA, clip image.Rectangle, a, b image.Point, c color.RGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		if a.In(clip) {
			dst.SetRGBA(a.X, a.Y, c)
		}
		return
	}
	for i := 0; i <= steps; i++ {
		p := image.Pt(a.X+dx*i/steps, a.Y+dy*i/steps)
		if p.In(clip) {
			dst.SetRGBA(p.X, p.Y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
