// Package metrics implements the reactive gauge graph: leaf gauges pushed by
// collectors, arithmetic combinators and windowed-rate estimators that
// recompute when their operands notify.
//
// The graph is acyclic by construction. A derived gauge can only be built from
// gauges that already exist and there is no way to add an edge afterwards, so
// a notification can never loop back to the gauge that started it. All gauge
// mutation must happen on a single goroutine.
package metrics

import (
	"math"
	"time"
)

// Timestamp is a point on a monotonic clock, in nanoseconds since an arbitrary
// fixed epoch (the boot clock in production).
type Timestamp int64

// Always is the freshness of a gauge that never changes.
const Always Timestamp = math.MaxInt64

// Add returns t shifted by d.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d)
}

// Sub returns the duration t-u.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t - u)
}

// Clock supplies the current monotonic time.
type Clock interface {
	Now() Timestamp
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() Timestamp

// Now implements Clock.
func (f ClockFunc) Now() Timestamp { return f() }

// Gauge is a value together with the time it was last known to be current.
type Gauge interface {
	Value() int64
	LastUpdate() Timestamp
	Subscribe(Subscriber)
	Unsubscribe(Subscriber)
}

// Leaf is a mutable gauge written by its owner through Update.
type Leaf struct {
	Publisher
	clock Clock
	value int64
	last  Timestamp
}

// NewLeaf returns a zero-valued leaf that has never been updated.
func NewLeaf(clock Clock) *Leaf {
	return &Leaf{clock: clock}
}

// NewLeafValue returns a leaf holding value, stamped with the current time.
func NewLeafValue(clock Clock, value int64) *Leaf {
	return &Leaf{clock: clock, value: value, last: clock.Now()}
}

// Update stores value and notifies subscribers. Writing the value already held
// changes nothing and notifies nobody.
func (l *Leaf) Update(value int64) {
	if l.value == value {
		return
	}
	l.value = value
	if now := l.clock.Now(); now > l.last {
		l.last = now
	}
	l.Notify()
}

// Value implements Gauge.
func (l *Leaf) Value() int64 { return l.value }

// LastUpdate implements Gauge.
func (l *Leaf) LastUpdate() Timestamp { return l.last }

// Const is a gauge that never changes and is therefore always fresh.
type Const struct {
	value int64
}

// NewConst returns a constant gauge.
func NewConst(value int64) *Const {
	return &Const{value: value}
}

// Value implements Gauge.
func (c *Const) Value() int64 { return c.value }

// LastUpdate implements Gauge.
func (c *Const) LastUpdate() Timestamp { return Always }

// Subscribe implements Gauge. A constant never notifies, so nothing is kept.
func (c *Const) Subscribe(Subscriber) {}

// Unsubscribe implements Gauge.
func (c *Const) Unsubscribe(Subscriber) {}
