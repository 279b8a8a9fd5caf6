package clock

import (
	"sync"
	"time"
)

// FrameClock ticks at a fixed frame rate. Ticks are dropped, not queued, when
// the consumer falls behind.
type FrameClock struct {
	interval time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func NewFrameClock(fps float64) *FrameClock {
	if fps <= 0 {
		fps = 30
	}

	return &FrameClock{
		interval: time.Duration(float64(time.Second) / fps),
		done:     make(chan struct{}),
	}
}

func (c *FrameClock) Interval() time.Duration {
	return c.interval
}

func (c *FrameClock) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *FrameClock) Tick() <-chan int64 {
	ch := make(chan int64, 1)
	go c.produce(ch)

	return ch
}

func (c *FrameClock) produce(ch chan int64) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	frame := int64(0)
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			select {
			case ch <- frame:
			default:
			}
			frame++
		}
	}
}
