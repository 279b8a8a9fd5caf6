package preview

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"
)

const Title = "kinect2share"

// Event is a user request raised from the window.
type Event int

const (
	// EventReconfigure asks to re-apply the OSC destination.
	EventReconfigure Event = iota
	// EventQuit asks the application to stop.
	EventQuit
)

// Window shows composed preview frames. Show may be called from any
// goroutine while Display runs the window event loop.
type Window struct {
	title string
	size  image.Point

	events  chan Event
	stopped chan error

	pendingMu sync.Mutex
	pending   []byte
	dirty     bool

	queueMu sync.Mutex
	queue   screen.EventDeque
	closing bool
}

// NewWindow prepares a window showing frames of the given size.
func NewWindow(title string, width, height int) *Window {
	return &Window{
		title:   title,
		size:    image.Pt(width, height),
		events:  make(chan Event, 8),
		stopped: make(chan error, 1),
		pending: make([]byte, width*height*4),
	}
}

func (w *Window) Events() <-chan Event {
	return w.events
}

// Stopped yields once the window is gone, with the reason if it failed.
func (w *Window) Stopped() <-chan error {
	return w.stopped
}

// Show copies img, which must match the window frame size, for display.
func (w *Window) Show(img *image.RGBA) {
	w.pendingMu.Lock()
	copy(w.pending, img.Pix)
	notify := !w.dirty
	w.dirty = true
	w.pendingMu.Unlock()

	if !notify {
		return
	}

	w.queueMu.Lock()
	q := w.queue
	w.queueMu.Unlock()
	if q != nil {
		q.Send(uploadEvent{})
	}
}

// Close asks the window to shut down. A window that is not displayed yet
// shuts down as soon as Display starts.
func (w *Window) Close() {
	w.queueMu.Lock()
	w.closing = true
	q := w.queue
	w.queueMu.Unlock()
	if q != nil {
		q.Send(lifecycle.Event{To: lifecycle.StageDead})
	}
}

// Display runs the window until it is closed. It is meant to be passed to
// driver.Main.
func (w *Window) Display(s screen.Screen) {
	win, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  w.title,
		Width:  w.size.X,
		Height: w.size.Y,
	})
	if err != nil {
		w.stop(fmt.Errorf("could not create window: %w", err))
		return
	}
	defer win.Release()

	tex, err := s.NewTexture(w.size)
	if err != nil {
		w.stop(fmt.Errorf("could not create texture: %w", err))
		return
	}
	defer tex.Release()

	buf, err := s.NewBuffer(w.size)
	if err != nil {
		w.stop(fmt.Errorf("could not create buffer: %w", err))
		return
	}
	defer buf.Release()

	w.queueMu.Lock()
	w.queue = win
	closing := w.closing
	w.queueMu.Unlock()
	if closing {
		win.Send(lifecycle.Event{To: lifecycle.StageDead})
	}
	defer func() {
		w.queueMu.Lock()
		w.queue = nil
		w.queueMu.Unlock()
	}()

	sizeEvent := size.Event{WidthPx: w.size.X, HeightPx: w.size.Y}
	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				w.quit()
				return
			}

		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			switch e.Code {
			case key.CodeEscape:
				w.quit()
				return
			case key.CodeReturnEnter:
				w.raise(EventReconfigure)
			}

		case size.Event:
			sizeEvent = e

		case uploadEvent:
			w.pendingMu.Lock()
			copy(buf.RGBA().Pix, w.pending)
			w.dirty = false
			w.pendingMu.Unlock()
			tex.Upload(image.Point{}, buf, buf.Bounds())
		}

		win.Scale(sizeEvent.Bounds(), tex, tex.Bounds(), draw.Src, nil)
		win.Publish()
	}
}

func (w *Window) raise(e Event) {
	select {
	case w.events <- e:
	default:
	}
}

func (w *Window) quit() {
	w.raise(EventQuit)
	w.stop(nil)
}

func (w *Window) stop(err error) {
	select {
	case w.stopped <- err:
	default:
	}
}

type uploadEvent struct{}
