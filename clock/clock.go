// Package clock provides the tick sources that drive the frame loop.
package clock

// Clock emits monotonically increasing tick numbers.
type Clock interface {
	Tick() <-chan int64
	Close() error
}
