package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/dusxproductions/kinect2share/app"
	"github.com/dusxproductions/kinect2share/broadcast"
	"github.com/dusxproductions/kinect2share/clock"
	"github.com/dusxproductions/kinect2share/control"
	"github.com/dusxproductions/kinect2share/controlsurface"
	"github.com/dusxproductions/kinect2share/kinect"
	"github.com/dusxproductions/kinect2share/oscio"
	"github.com/dusxproductions/kinect2share/preview"
	"github.com/dusxproductions/kinect2share/spout"
	"github.com/dusxproductions/kinect2share/videostream"
	"github.com/spf13/cobra"
	"golang.org/x/exp/shiny/driver"
)

var (
	headless    bool
	bodies      int
	fps         float64
	useMikro    bool
	ndiAddrFlag string
	mapperFlag  string
)

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&headless, "headless", false, "run without the preview window")
	f.IntVar(&bodies, "bodies", 2, "number of bodies tracked by the synthetic sensor")
	f.Float64Var(&fps, "fps", 30, "frame rate of the update loop")
	f.BoolVar(&useMikro, "mikro", false, "use a Maschine Mikro Mk3 as control surface")
	f.StringVar(&mapperFlag, "mapper", string(kinect.MapperCalibrated), "depth to color mapping of the synthetic sensor (calibrated or linear)")
	f.StringVar(&ndiAddrFlag, "ndi-addr", "239.76.50.50:5960", "address of the first network video stream, the others use the following ports")
}

func runE(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := slog.Default()

	ndiAddr, err := netip.ParseAddrPort(ndiAddrFlag)
	if err != nil {
		return fmt.Errorf("could not parse network video address: %w", err)
	}

	switch kinect.MapperKind(mapperFlag) {
	case kinect.MapperCalibrated, kinect.MapperLinear:
	default:
		return fmt.Errorf("unknown coordinate mapper %q", mapperFlag)
	}

	settings, err := control.Load(settingsPath)
	if err != nil {
		logger.Warn("could not load settings, using defaults", "path", settingsPath, "error", err)
	}
	state := control.NewState(settings)

	hub := spout.NewHub()
	defer hub.Close()

	video := make(map[control.Stream]broadcast.VideoSender)
	if settings.NDI.Active {
		for i, s := range broadcast.Streams {
			addr := netip.AddrPortFrom(ndiAddr.Addr(), ndiAddr.Port()+uint16(i))
			sender, err := videostream.NewSender(s.Name, addr, s.Width, s.Height, settings.NDI.Async)
			if err != nil {
				return fmt.Errorf("could not create video sender %s: %w", s.Name, err)
			}
			defer sender.Close()

			video[s.ID] = sender
			logger.Info("network video sender ready", "stream", s.Name, "addr", addr)
		}
	}

	receiver, err := oscio.NewReceiver(settings.OSC.InPort, logger)
	if err != nil {
		return err
	}
	defer receiver.Close()
	go func() {
		if err := receiver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("osc receiver stopped", "error", err)
		}
	}()

	source := kinect.NewSynthetic(kinect.SyntheticOptions{
		Bodies: bodies,
		Mapper: kinect.MapperKind(mapperFlag),
	})
	defer source.Close()

	cfg := app.Config{
		Source:       source,
		State:        state,
		Pipeline:     broadcast.New(hub, video, logger),
		OSC:          oscio.NewSender(settings.OSC.Host, settings.OSC.OutPort),
		SettingsPath: settingsPath,
		Commands:     receiver,
		Logger:       logger,
	}

	if useMikro {
		surface, err := controlsurface.Open(state, logger)
		if err != nil {
			return err
		}
		defer surface.Close()
		go func() {
			if err := surface.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("control surface stopped", "error", err)
			}
		}()
		cfg.Surface = surface
	}

	var window *preview.Window
	if !headless {
		window = preview.NewWindow(preview.Title, preview.Width, preview.Height)
		cfg.Preview = window
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("could not create app: %w", err)
	}

	frameClock := clock.NewFrameClock(fps)
	defer frameClock.Close()

	logger.Info("starting", "osc_out", fmt.Sprintf("%s:%d", settings.OSC.Host, settings.OSC.OutPort), "osc_in", settings.OSC.InPort, "ndi", settings.NDI.Active)

	if window == nil {
		return a.Run(ctx, frameClock)
	}

	appStopped := make(chan error, 1)
	go func() {
		err := a.Run(ctx, frameClock)
		window.Close()
		appStopped <- err
	}()

	// The window owns the main goroutine until it is closed.
	driver.Main(window.Display)
	cancel()

	appErr := <-appStopped
	if err := <-window.Stopped(); err != nil {
		return fmt.Errorf("preview window failed: %w", err)
	}
	return appErr
}
