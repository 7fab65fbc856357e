package metrics

import (
	"math"
	"time"
)

// Slice turns a monotonically non-decreasing accumulator into a rate per fixed
// period. Period boundaries are the multiples of the period on the clock
// epoch. A sample that straddles a boundary has its delta split in proportion
// to the time on each side; the part before the boundary is emitted, the part
// after it is carried into the next emission. When several boundaries were
// crossed at once the emitted value is averaged over all of them.
type Slice struct {
	Publisher
	source Gauge
	period Timestamp

	rate      int64
	lastTime  Timestamp
	lastValue int64
	remainder int64
}

// NewSlice returns a rate estimator over source with the given period.
func NewSlice(source Gauge, period time.Duration) *Slice {
	if period <= 0 {
		period = time.Second
	}
	s := &Slice{
		source:    source,
		period:    Timestamp(period),
		lastTime:  source.LastUpdate(),
		lastValue: source.Value(),
	}
	source.Subscribe(s)
	s.OnUpdate()
	return s
}

// OnUpdate implements Subscriber.
func (s *Slice) OnUpdate() {
	now := s.source.LastUpdate()
	if now <= s.lastTime {
		return
	}

	lastCut := s.cut(s.lastTime)
	curCut := s.cut(now)
	if curCut <= lastCut {
		// Still inside the same period; keep the baseline and wait.
		return
	}

	ratioBefore := float64(curCut-s.lastTime) / float64(now-s.lastTime)
	value := s.source.Value()
	delta := value - s.lastValue
	beforeValue := int64(math.Round(float64(delta) * ratioBefore))
	afterValue := delta - beforeValue

	ticks := int64((curCut - lastCut) / s.period)
	pending := beforeValue + s.remainder
	s.rate = pending / ticks

	s.lastTime = now
	s.lastValue = value
	s.remainder = afterValue + (pending - s.rate*ticks)

	s.Notify()
}

// cut returns the latest period boundary at or before t.
func (s *Slice) cut(t Timestamp) Timestamp {
	q := t / s.period
	if t%s.period < 0 {
		q--
	}
	return q * s.period
}

// Value implements Gauge. It is the rate emitted at the last boundary crossing.
func (s *Slice) Value() int64 { return s.rate }

// LastUpdate implements Gauge. A slice is exactly as fresh as its source.
func (s *Slice) LastUpdate() Timestamp { return s.source.LastUpdate() }

// Remainder reports the delta observed after the last boundary that has not
// been emitted yet.
func (s *Slice) Remainder() int64 { return s.remainder }

// Close detaches the estimator from its source.
func (s *Slice) Close() {
	s.source.Unsubscribe(s)
}
