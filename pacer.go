package flywheel

import "time"

// DefaultFrameRate is the frame-rate cap used when none is configured,
// resolving Open Question (c): the header is silent, 60 Hz is the
// documented reasonable default.
const DefaultFrameRate = 60

// pacer decides, at end_frame, whether enough time has elapsed since the
// last flush to justify doing one (§4.5 step 3, §5 "Suspension points": the
// engine never sleeps, it only drops frames).
type pacer struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func newPacer(rateHz int) *pacer {
	if rateHz <= 0 {
		rateHz = DefaultFrameRate
	}
	return &pacer{
		interval: time.Second / time.Duration(rateHz),
		now:      time.Now,
	}
}

// due reports whether a flush may happen now, and does not itself record
// anything: the caller commits via markFlushed once it has actually flushed.
func (p *pacer) due() bool {
	return p.now().Sub(p.last) >= p.interval
}

func (p *pacer) markFlushed() {
	p.last = p.now()
}

// setRate changes the pacer's target rate without resetting its last-flush
// timestamp.
func (p *pacer) setRate(hz int) {
	if hz <= 0 {
		hz = DefaultFrameRate
	}
	p.interval = time.Second / time.Duration(hz)
}
