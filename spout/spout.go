// Package spout shares rendered stream textures under well-known names.
//
// Spout itself is a Windows GPU texture-sharing system. Hub is the in-process
// stand-in used on other platforms: every texture sent under a name is handed
// to the receivers registered for that name.
package spout

import (
	"image"
	"sync"
)

// Sender shares a texture under name. The texture is owned by the caller and
// may be redrawn as soon as SendTexture returns.
type Sender interface {
	SendTexture(name string, tex *image.RGBA) error
}

type Hub struct {
	mu        sync.RWMutex
	receivers map[string][]chan *image.RGBA
	sent      map[string]uint64
	closed    bool
}

func NewHub() *Hub {
	return &Hub{
		receivers: make(map[string][]chan *image.RGBA),
		sent:      make(map[string]uint64),
	}
}

// SendTexture never blocks. Receivers that have not consumed the previous
// texture get the new one in its place. Textures are only copied when at
// least one receiver is attached.
func (h *Hub) SendTexture(name string, tex *image.RGBA) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.sent[name]++

	receivers := h.receivers[name]
	if len(receivers) == 0 {
		return nil
	}

	shared := image.NewRGBA(tex.Bounds())
	copy(shared.Pix, tex.Pix)

	for _, ch := range receivers {
		select {
		case ch <- shared:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- shared:
		default:
		}
	}

	return nil
}

// Receive returns a channel delivering the latest texture shared under name.
func (h *Hub) Receive(name string) <-chan *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan *image.RGBA, 1)
	if h.closed {
		close(ch)
		return ch
	}
	h.receivers[name] = append(h.receivers[name], ch)

	return ch
}

// Sent returns how many textures were shared under name.
func (h *Hub) Sent(name string) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.sent[name]
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for _, receivers := range h.receivers {
		for _, ch := range receivers {
			close(ch)
		}
	}

	return nil
}
