package core

import "time"

// FixedStep paces a polling loop at a steady events-per-second rate. The
// monitor server uses it to hold its snapshot broadcast cadence independent
// of how fast the simulation ticks.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given rate.
func NewFixedStep(perSecond int) *FixedStep {
	if perSecond <= 0 {
		perSecond = 60
	}
	fs := &FixedStep{}
	fs.SetRate(perSecond)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the target rate. It is safe to call from the owning loop.
func (f *FixedStep) SetRate(perSecond int) {
	if perSecond <= 0 {
		perSecond = 60
	}
	f.step = time.Second / time.Duration(perSecond)
}

// Interval returns the current step duration, useful as a sleep hint.
func (f *FixedStep) Interval() time.Duration { return f.step }

// ShouldStep reports whether the loop should run one more event.
func (f *FixedStep) ShouldStep() bool {
	now := time.Now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}
