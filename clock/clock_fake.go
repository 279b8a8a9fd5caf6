package clock

// FakeClock only ticks when Step is called.
type FakeClock struct {
	ch    chan int64
	frame int64
}

func NewFakeClock() *FakeClock {
	return &FakeClock{
		ch: make(chan int64, 64),
	}
}

func (c *FakeClock) Close() error {
	return nil
}

func (c *FakeClock) Tick() <-chan int64 {
	return c.ch
}

// Step emits n ticks. It must not be called with more than 64 unconsumed
// ticks pending.
func (c *FakeClock) Step(n int) {
	for i := 0; i < n; i++ {
		c.ch <- c.frame
		c.frame++
	}
}
