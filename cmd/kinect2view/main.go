package main

import (
	"context"
	"flag"
	"image"
	"log"
	"net/netip"
	"time"

	"github.com/dusxproductions/kinect2share/broadcast"
	"github.com/dusxproductions/kinect2share/control"
	"github.com/dusxproductions/kinect2share/preview"
	"github.com/dusxproductions/kinect2share/videostream"
	"golang.org/x/exp/shiny/driver"
)

const refreshRate = 30 * time.Millisecond

var (
	addrFlag   string
	streamFlag string
)

func init() {
	flag.StringVar(&addrFlag, "addr", "239.76.50.50:5960", "address of the first network video stream")
	flag.StringVar(&streamFlag, "stream", "color", "stream to show: color, depth, cutout or keyed")
}

func main() {
	flag.Parse()

	base, err := netip.ParseAddrPort(addrFlag)
	if err != nil {
		log.Fatalf("could not parse address: %s", err)
	}

	id, err := control.ParseStream(streamFlag)
	if err != nil {
		log.Fatalf("could not select stream: %s", err)
	}

	var offset uint16
	for i, s := range broadcast.Streams {
		if s.ID == id {
			offset = uint16(i)
		}
	}
	stream := broadcast.Lookup(id)
	addr := netip.AddrPortFrom(base.Addr(), base.Port()+offset)

	r, err := videostream.NewReceiver(addr)
	if err != nil {
		log.Fatalf("could not create video receiver: %s", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := r.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("video receiver stopped: %s", err)
		}
	}()

	w := preview.NewWindow("kinect2view "+stream.Name, stream.Width, stream.Height)
	go show(ctx, r, w, stream)

	log.Printf("receiving %s on %s", stream.Name, addr)
	driver.Main(w.Display)

	if err := <-w.Stopped(); err != nil {
		log.Fatalf("window stopped with error: %s", err)
	}
}

func show(ctx context.Context, r *videostream.Receiver, w *preview.Window, stream broadcast.Stream) {
	refresh := time.NewTicker(refreshRate)
	defer refresh.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			frame, n := r.Frame()
			if frame == nil || n == last {
				continue
			}
			last = n
			if frame.Rect != image.Rect(0, 0, stream.Width, stream.Height) {
				log.Printf("dropping %dx%d frame", frame.Rect.Dx(), frame.Rect.Dy())
				continue
			}
			w.Show(frame)
		}
	}
}
