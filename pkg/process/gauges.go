package process

import (
	"weak"

	"github.com/srodi/treetop/pkg/metrics"
)

// Counter names one observable counter of a process.
type Counter int

const (
	State Counter = iota
	Memory
	UserTime
	SystemTime
	ReadBytes
	WriteBytes
	ReadCalls
	WriteCalls
	DiskReadBytes
	DiskWriteBytes
	DiskCancelledWriteBytes
	numCounters
)

var counterNames = [numCounters]string{
	"state", "memory", "user_time", "system_time",
	"read_bytes", "write_bytes", "read_calls", "write_calls",
	"disk_read_bytes", "disk_write_bytes", "disk_cancelled_write_bytes",
}

func (c Counter) String() string {
	if c < 0 || c >= numCounters {
		return "unknown"
	}
	return counterNames[c]
}

// counterGauge is the leaf behind one counter of one process. The process
// only holds it weakly, so it lives exactly as long as something subscribed
// to it (directly or through a derived gauge) holds it.
type counterGauge struct {
	metrics.Publisher
	owner *Process
	value int64
	at    metrics.Timestamp
	set   bool
}

// Value implements metrics.Gauge.
func (g *counterGauge) Value() int64 { return g.value }

// LastUpdate implements metrics.Gauge. Before the first sample the gauge is as
// fresh as the process start, so derived gauges always have a defined time.
func (g *counterGauge) LastUpdate() metrics.Timestamp {
	if !g.set {
		return g.owner.started
	}
	return g.at
}

func (g *counterGauge) update(value int64, at metrics.Timestamp) {
	g.value = value
	if at > g.at {
		g.at = at
	}
	g.set = true
	g.Notify()
}

// Gauge returns the gauge for counter c, creating it on first use. It is
// written on every Update, even when the value did not change, so rates see
// idle periods.
func (p *Process) Gauge(c Counter) metrics.Gauge {
	if g := p.gauges[c].Value(); g != nil {
		return g
	}
	g := &counterGauge{owner: p}
	p.gauges[c] = weak.Make(g)
	return g
}

func (p *Process) set(c Counter, value int64, at metrics.Timestamp) {
	if g := p.gauges[c].Value(); g != nil {
		g.update(value, at)
	}
}

func (p *Process) State() metrics.Gauge                   { return p.Gauge(State) }
func (p *Process) Memory() metrics.Gauge                  { return p.Gauge(Memory) }
func (p *Process) UserTime() metrics.Gauge                { return p.Gauge(UserTime) }
func (p *Process) SystemTime() metrics.Gauge              { return p.Gauge(SystemTime) }
func (p *Process) ReadBytes() metrics.Gauge               { return p.Gauge(ReadBytes) }
func (p *Process) WriteBytes() metrics.Gauge              { return p.Gauge(WriteBytes) }
func (p *Process) ReadCalls() metrics.Gauge               { return p.Gauge(ReadCalls) }
func (p *Process) WriteCalls() metrics.Gauge              { return p.Gauge(WriteCalls) }
func (p *Process) DiskReadBytes() metrics.Gauge           { return p.Gauge(DiskReadBytes) }
func (p *Process) DiskWriteBytes() metrics.Gauge          { return p.Gauge(DiskWriteBytes) }
func (p *Process) DiskCancelledWriteBytes() metrics.Gauge { return p.Gauge(DiskCancelledWriteBytes) }
