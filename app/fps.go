package app

import "time"

// fpsMeter smooths the frame rate over recent frames.
type fpsMeter struct {
	last   time.Time
	smooth float64
}

const fpsSmoothing = 0.9

func (m *fpsMeter) tick(now time.Time) {
	if !m.last.IsZero() {
		if dt := now.Sub(m.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if m.smooth == 0 {
				m.smooth = inst
			} else {
				m.smooth = fpsSmoothing*m.smooth + (1-fpsSmoothing)*inst
			}
		}
	}
	m.last = now
}

func (m *fpsMeter) rate() float64 {
	return m.smooth
}
