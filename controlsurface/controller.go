// Package controlsurface maps the pads of a Maschine Mikro Mk3 onto the
// stream toggles.
package controlsurface

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"essaim.dev/mikro"
	"github.com/dusxproductions/kinect2share/control"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const refreshRate = 50 * time.Millisecond

var (
	// Top row shares textures, second row streams over the network, one
	// column per stream.
	padToggles = map[mikro.Pad]control.Toggle{
		mikro.PadNumber13: {Target: control.TargetSpout, Stream: control.StreamColor},
		mikro.PadNumber14: {Target: control.TargetSpout, Stream: control.StreamDepth},
		mikro.PadNumber15: {Target: control.TargetSpout, Stream: control.StreamCutout},
		mikro.PadNumber16: {Target: control.TargetSpout, Stream: control.StreamKeyed},

		mikro.PadNumber9:  {Target: control.TargetNDI, Stream: control.StreamColor},
		mikro.PadNumber10: {Target: control.TargetNDI, Stream: control.StreamDepth},
		mikro.PadNumber11: {Target: control.TargetNDI, Stream: control.StreamCutout},
		mikro.PadNumber12: {Target: control.TargetNDI, Stream: control.StreamKeyed},

		mikro.PadNumber5: {Target: control.TargetNDIActive},
		mikro.PadNumber6: {Target: control.TargetPBO},
		mikro.PadNumber7: {Target: control.TargetAsync},

		mikro.PadNumber1: {Target: control.TargetJSON},
	}

	targetColors = map[control.Target]mikro.Color{
		control.TargetSpout:     mikro.ColorGreen,
		control.TargetNDI:       mikro.ColorBlue,
		control.TargetNDIActive: mikro.ColorViolet,
		control.TargetPBO:       mikro.ColorCyan,
		control.TargetAsync:     mikro.ColorMint,
		control.TargetJSON:      mikro.ColorOrange,
	}
)

type Controller struct {
	device *mikro.Mk3
	state  *control.State
	logger *slog.Logger

	bodies  atomic.Int32
	painted atomic.Int32
}

// Open connects to the first Mk3 found.
func Open(state *control.State, logger *slog.Logger) (*Controller, error) {
	dev, err := mikro.OpenMk3()
	if err != nil {
		return nil, fmt.Errorf("could not open mikro device: %w", err)
	}

	return newController(dev, state, logger), nil
}

func newController(dev *mikro.Mk3, state *control.State, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		device: dev,
		state:  state,
		logger: logger,
	}
	c.painted.Store(-1)

	return c
}

func (c *Controller) Close() error {
	return c.device.Close()
}

// SetTrackedBodies updates the body count shown on the device screen.
func (c *Controller) SetTrackedBodies(n int) {
	c.bodies.Store(int32(n))
}

func (c *Controller) Run(ctx context.Context) error {
	c.device.SetOnPadFunc(c.onPadPressed)

	deviceErr := make(chan error, 1)
	go func() {
		deviceErr <- c.device.Run(ctx)
	}()

	refresh := time.NewTicker(refreshRate)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-deviceErr:
			return fmt.Errorf("device stopped running with error: %w", err)

		case <-refresh.C:
			if err := c.render(); err != nil {
				c.logger.Warn("could not refresh control surface", "error", err)
			}
		}
	}
}

func (c *Controller) render() error {
	l := c.device.Lights()
	c.renderLights(&l)
	if err := c.device.SetLights(l); err != nil {
		return fmt.Errorf("could not update controller pad lights: %w", err)
	}

	bodies := c.bodies.Load()
	if c.painted.Swap(bodies) == bodies {
		return nil
	}
	if err := c.device.SetScreen(c.screen(int(bodies))); err != nil {
		return fmt.Errorf("could not update device screen: %w", err)
	}

	return nil
}

func (c *Controller) onPadPressed(msg mikro.PadMessage) {
	// Act on release only.
	if msg.Velocity() > 0 || msg.Action() == mikro.PadActionTouched {
		return
	}

	c.press(msg.Pad())
}

func (c *Controller) press(pad mikro.Pad) {
	t, ok := padToggles[pad]
	if !ok {
		return
	}

	on := c.state.Toggle(t)
	c.logger.Info("setting toggled from control surface", "target", t.Target, "stream", t.Stream, "on", on)
}

func (c *Controller) renderLights(lights *mikro.Lights) {
	for idx := range lights.Buttons {
		lights.Buttons[idx] = mikro.IntensityOff
	}

	for idx := range lights.Pads {
		t, ok := padToggles[mikro.Pad(idx)]
		if !ok {
			lights.Pads[idx] = mikro.ColoredLight{Color: mikro.ColorOff, Level: mikro.ColorLevelLow}
			continue
		}

		level := mikro.ColorLevelLow
		if c.state.Get(t) {
			level = mikro.ColorLevelHigh
		}
		lights.Pads[idx] = mikro.ColoredLight{
			Color: targetColors[t.Target],
			Level: level,
		}
	}
}

func (c *Controller) screen(bodies int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 128, 32))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(12)},
	}
	d.DrawString("kinect2share")

	d.Dot = fixed.Point26_6{X: fixed.I(4), Y: fixed.I(27)}
	d.DrawString(fmt.Sprintf("bodies: %d", bodies))

	return img
}
