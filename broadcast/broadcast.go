// Package broadcast renders every published stream into its own target and
// hands the result to the texture share and the network video senders.
package broadcast

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dusxproductions/kinect2share/control"
	"github.com/dusxproductions/kinect2share/kinect"
	"github.com/dusxproductions/kinect2share/render"
	"github.com/dusxproductions/kinect2share/spout"
)

// Stream describes one published stream.
type Stream struct {
	Name   string
	ID     control.Stream
	Width  int
	Height int
}

// Streams lists the published streams in draw order.
var Streams = [control.StreamCount]Stream{
	{Name: "kv2_depth", ID: control.StreamDepth, Width: kinect.DepthWidth, Height: kinect.DepthHeight},
	{Name: "kv2_color", ID: control.StreamColor, Width: kinect.ColorWidth, Height: kinect.ColorHeight},
	{Name: "kv2_cutout", ID: control.StreamCutout, Width: kinect.DepthWidth, Height: kinect.DepthHeight},
	{Name: "kv2_keyed", ID: control.StreamKeyed, Width: kinect.DepthWidth, Height: kinect.DepthHeight},
}

// Lookup returns the stream definition for id.
func Lookup(id control.Stream) Stream {
	for _, s := range Streams {
		if s.ID == id {
			return s
		}
	}
	return Stream{ID: id}
}

// VideoSender publishes tightly packed RGBA frames. In async mode the last
// submitted buffer must stay untouched until the next SendFrame.
type VideoSender interface {
	SendFrame(pix []byte, width, height int) error
	Async() bool
	SetAsync(async bool)
}

// Sources holds the drawable for every stream, indexed by control.Stream.
type Sources [control.StreamCount]kinect.Drawable

// Result reports what happened to one stream during a frame.
type Result struct {
	Stream Stream
	Spout  bool
	NDI    bool
	// Buffer is the double buffer slot handed to the video sender.
	Buffer int
	Err    error
}

type output struct {
	stream   Stream
	target   *render.Target
	buffers  *render.DoubleBuffer
	transfer *render.PixelTransfer
	video    VideoSender
}

type Pipeline struct {
	spout   spout.Sender
	outputs [control.StreamCount]*output
	logger  *slog.Logger
}

// New builds a pipeline. sp may be nil, as may any entry of video: the
// matching sink is then never invoked.
func New(sp spout.Sender, video map[control.Stream]VideoSender, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		spout:  sp,
		logger: logger,
	}
	for i, s := range Streams {
		p.outputs[i] = &output{
			stream:   s,
			target:   render.NewTarget(s.Width, s.Height),
			buffers:  render.NewDoubleBuffer(s.Width, s.Height),
			transfer: render.NewPixelTransfer(s.Width, s.Height),
			video:    video[s.ID],
		}
	}

	return p
}

// Target returns the render target of a stream, as drawn by the last
// Broadcast.
func (p *Pipeline) Target(id control.Stream) *render.Target {
	for _, o := range p.outputs {
		if o.stream.ID == id {
			return o.target
		}
	}
	return nil
}

// Broadcast renders every stream and sends it to the sinks enabled in snap.
// Streams without a source are skipped.
func (p *Pipeline) Broadcast(snap control.Snapshot, sources Sources) []Result {
	results := make([]Result, 0, len(p.outputs))

	for _, o := range p.outputs {
		src := sources[o.stream.ID]
		if src == nil {
			continue
		}

		res := Result{Stream: o.stream}
		o.target.Render(src)

		if snap.Spout.Get(o.stream.ID) && p.spout != nil {
			if err := p.spout.SendTexture(o.stream.Name, o.target.Image()); err != nil {
				p.logger.Debug("could not share texture", "stream", o.stream.Name, "error", err)
				res.Err = err
			} else {
				res.Spout = true
			}
		}

		if snap.NDIActive && snap.NDI.Get(o.stream.ID) && o.video != nil {
			sent, idx, err := p.sendVideo(o, snap)
			switch {
			case errors.Is(err, render.ErrNotMapped):
				// Nothing transferred yet.
			case err != nil:
				p.logger.Warn("could not send video frame", "stream", o.stream.Name, "error", err)
				res.Err = errors.Join(res.Err, err)
			}
			res.NDI = sent
			res.Buffer = idx
		}

		results = append(results, res)
	}

	return results
}

func (p *Pipeline) sendVideo(o *output, snap control.Snapshot) (bool, int, error) {
	if o.video.Async() != snap.Async {
		o.video.SetAsync(snap.Async)
	}

	idx, buf := o.buffers.Back(snap.Async)

	img := o.target.Image()
	if snap.PBO {
		if err := o.transfer.Read(img, buf); err != nil {
			return false, idx, err
		}
	} else if err := render.ReadPixels(img, buf); err != nil {
		return false, idx, fmt.Errorf("could not read back pixels: %w", err)
	}

	if err := o.video.SendFrame(buf, o.stream.Width, o.stream.Height); err != nil {
		return false, idx, fmt.Errorf("could not send frame: %w", err)
	}
	o.buffers.Swap(snap.Async)

	return true, idx, nil
}
