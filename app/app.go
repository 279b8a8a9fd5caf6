// Package app runs the per-frame cycle: read the sensor, key the foreground,
// publish skeletons over OSC and broadcast every stream.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/dusxproductions/kinect2share/broadcast"
	"github.com/dusxproductions/kinect2share/clock"
	"github.com/dusxproductions/kinect2share/composite"
	"github.com/dusxproductions/kinect2share/control"
	"github.com/dusxproductions/kinect2share/coordmap"
	"github.com/dusxproductions/kinect2share/kinect"
	"github.com/dusxproductions/kinect2share/oscio"
	"github.com/dusxproductions/kinect2share/preview"
	"github.com/dusxproductions/kinect2share/render"
	"github.com/dusxproductions/kinect2share/skeleton"
	"github.com/hypebeast/go-osc/osc"
)

// Publisher sends OSC traffic. It is implemented by *oscio.Sender.
type Publisher interface {
	SendAll(msgs []*osc.Message) error
	Status(text string) error
	Reconfigure(host string, port int) error
}

// Commands yields control commands received since the last call. It is
// implemented by *oscio.Receiver.
type Commands interface {
	Drain() []oscio.Command
}

// Preview is implemented by *preview.Window.
type Preview interface {
	Show(img *image.RGBA)
	Events() <-chan preview.Event
}

// BodyDisplay is implemented by *controlsurface.Controller.
type BodyDisplay interface {
	SetTrackedBodies(n int)
}

type Config struct {
	Source   kinect.Source
	State    *control.State
	Pipeline *broadcast.Pipeline
	OSC      Publisher

	// SettingsPath is where settings are saved on exit. Empty disables
	// saving.
	SettingsPath string

	// Optional.
	Commands Commands
	Preview  Preview
	Surface  BodyDisplay
	Logger   *slog.Logger
}

type App struct {
	source   kinect.Source
	state    *control.State
	pipeline *broadcast.Pipeline
	osc      Publisher
	path     string
	commands Commands
	preview  Preview
	surface  BodyDisplay
	logger   *slog.Logger

	mapper   *coordmap.Adapter
	keyer    *composite.Keyer
	depth    kinect.Stream[[]uint16]
	cutout   kinect.Stream[[]uint8]
	color    kinect.Stream[*image.RGBA]
	sources  broadcast.Sources
	ir       kinect.Drawable
	infrared *render.Target
	canvas   *image.RGBA
	fps      fpsMeter

	snapshot       control.Snapshot
	haveAllStreams bool
	bodiesTracked  int
	results        []broadcast.Result

	exitRequested bool
	exitByCommand bool
}

func New(cfg Config) (*App, error) {
	if cfg.Source == nil || cfg.State == nil || cfg.Pipeline == nil || cfg.OSC == nil {
		return nil, errors.New("source, state, pipeline and osc publisher are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	frame := cfg.Source.Frame()
	keyer := composite.NewKeyer(kinect.DepthWidth, kinect.DepthHeight)

	a := &App{
		source:   cfg.Source,
		state:    cfg.State,
		pipeline: cfg.Pipeline,
		osc:      cfg.OSC,
		path:     cfg.SettingsPath,
		commands: cfg.Commands,
		preview:  cfg.Preview,
		surface:  cfg.Surface,
		logger:   cfg.Logger,
		keyer:    keyer,
		depth:    kinect.NewDepthStream(frame),
		cutout:   kinect.NewBodyIndexStream(frame),
		color:    kinect.NewColorStream(frame),
	}
	a.sources[control.StreamDepth] = a.depth
	a.sources[control.StreamColor] = a.color
	a.sources[control.StreamCutout] = a.cutout
	a.sources[control.StreamKeyed] = kinect.NewImageStream(keyer.Image())

	if a.preview != nil {
		a.ir = kinect.NewInfraredStream(frame)
		a.infrared = render.NewTarget(kinect.DepthWidth, kinect.DepthHeight)
		a.canvas = image.NewRGBA(image.Rect(0, 0, preview.Width, preview.Height))
	}

	return a, nil
}

// Setup acquires the coordinate mapper. Failing to do so leaves the keyed
// stream transparent and everything else working.
func (a *App) Setup() {
	m, err := a.source.CoordinateMapper()
	if err != nil {
		a.logger.Error("could not acquire coordinate mapper, keyed stream disabled", "error", err)
		m = nil
	}
	a.mapper = coordmap.NewAdapter(m, kinect.DepthSize)
}

func (a *App) HaveAllStreams() bool { return a.haveAllStreams }

func (a *App) NumBodiesTracked() int { return a.bodiesTracked }

// Results reports the sinks that fired during the last Draw.
func (a *App) Results() []broadcast.Result { return a.results }

// ExitRequested reports whether a control input asked to stop.
func (a *App) ExitRequested() bool { return a.exitRequested }

// Update applies pending commands, refreshes the sensor frame, keys the
// foreground and publishes the skeletons. A pending exit skips everything
// after the commands.
func (a *App) Update() {
	a.applyCommands()
	if a.exitRequested {
		return
	}
	a.snapshot = a.state.Snapshot()

	err := a.source.Update()
	frame := a.source.Frame()
	a.haveAllStreams = err == nil && frame.Complete()
	if err != nil && !errors.Is(err, kinect.ErrNotReady) {
		a.logger.Warn("could not update sensor frame", "error", err)
	}

	a.bodiesTracked = 0
	if !a.haveAllStreams {
		return
	}

	a.bodiesTracked = frame.TrackedBodies()
	if a.surface != nil {
		a.surface.SetTrackedBodies(a.bodiesTracked)
	}

	if a.snapshot.KeyedNeeded() && a.mapper != nil && a.mapper.Available() {
		a.key()
	}

	msgs := skeleton.Messages(frame.Bodies, a.snapshot.OSC.JSON)
	if err := a.osc.SendAll(msgs); err != nil {
		a.logger.Debug("could not send body messages", "error", err)
	}
}

func (a *App) key() {
	coords, err := a.mapper.Map(a.depth.Pixels())
	if err != nil {
		a.logger.Debug("could not map depth frame", "error", err)
		a.keyer.Clear()
		return
	}

	if err := a.keyer.Composite(a.cutout.Pixels(), coords, a.color.Pixels(), a.bodiesTracked); err != nil {
		a.logger.Debug("could not composite foreground", "error", err)
		a.keyer.Clear()
	}
}

// Draw broadcasts every stream and refreshes the preview.
func (a *App) Draw() {
	a.results = a.pipeline.Broadcast(a.snapshot, a.sources)
	a.fps.tick(time.Now())

	if a.preview == nil {
		return
	}

	frame := a.source.Frame()
	a.infrared.Render(a.ir)

	preview.Compose(a.canvas, preview.Frame{
		Depth:    a.pipeline.Target(control.StreamDepth).Image(),
		Color:    a.pipeline.Target(control.StreamColor).Image(),
		Keyed:    a.pipeline.Target(control.StreamKeyed).Image(),
		Infrared: a.infrared.Image(),
		Cutout:   a.pipeline.Target(control.StreamCutout).Image(),
		Bodies:   frame.Bodies,
		Status: preview.Status{
			FPS:                a.fps.rate(),
			HaveAllStreams:     a.haveAllStreams,
			TrackedBodies:      a.bodiesTracked,
			NDIRestartRequired: a.snapshot.NDIRestartRequired,
			KeyedShown:         a.snapshot.KeyedNeeded(),
		},
	})
	a.preview.Show(a.canvas)
}

// Exit saves the settings and announces the shutdown.
func (a *App) Exit() error {
	var errs []error

	if a.path != "" {
		if err := control.Save(a.path, a.state.Settings()); err != nil {
			errs = append(errs, err)
		}
	}

	if a.exitByCommand {
		if err := a.osc.Status(oscio.StatusExit); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.osc.Status(oscio.StatusClosed); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Run drives Update and Draw on every tick of clk until the context is done
// or an exit is requested, then calls Exit.
func (a *App) Run(ctx context.Context, clk clock.Clock) error {
	a.Setup()

	var events <-chan preview.Event
	if a.preview != nil {
		events = a.preview.Events()
	}

	ticks := clk.Tick()
	for !a.exitRequested {
		select {
		case <-ctx.Done():
			a.exitRequested = true

		case e := <-events:
			a.handlePreviewEvent(e)

		case <-ticks:
			a.Update()
			if !a.exitRequested {
				a.Draw()
			}
		}
	}

	if err := a.Exit(); err != nil {
		return fmt.Errorf("could not exit cleanly: %w", err)
	}
	return nil
}

func (a *App) handlePreviewEvent(e preview.Event) {
	switch e {
	case preview.EventQuit:
		a.exitRequested = true

	case preview.EventReconfigure:
		s := a.state.Snapshot().OSC
		if err := a.osc.Reconfigure(s.Host, s.OutPort); err != nil {
			a.logger.Warn("could not reconfigure osc sender", "error", err)
			return
		}
		a.logger.Info("osc destination updated", "host", s.Host, "port", s.OutPort)
	}
}

func (a *App) applyCommands() {
	if a.commands == nil {
		return
	}

	for _, c := range a.commands.Drain() {
		switch c.Kind {
		case oscio.CommandExit:
			a.exitRequested = true
			a.exitByCommand = true
		case oscio.CommandSet:
			a.state.Set(c.Toggle, c.On)
		}
	}
}
