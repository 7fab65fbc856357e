// Package sysinfo holds the system-wide values every process row depends on.
// A Context is built once at startup and passed to the components that need
// it.
package sysinfo

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/tklauser/go-sysconf"

	"github.com/srodi/treetop/pkg/metrics"
	"github.com/srodi/treetop/pkg/types"
)

// Seams for tests.
var (
	totalMemory = func() (uint64, error) {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return 0, err
		}
		return vm.Total, nil
	}
	clockTicks = func() (int64, error) {
		return sysconf.Sysconf(sysconf.SC_CLK_TCK)
	}
	wallNow = time.Now
)

// Context is the process-independent configuration of a session.
type Context struct {
	// RefreshInterval is the sampling period and the period of every rate.
	RefreshInterval time.Duration
	// ClockTicks is the number of CPU time ticks per second.
	ClockTicks int64
	// TotalMemory is the physical memory size in bytes.
	TotalMemory *metrics.Const
	// TicksPerInterval is the CPU time one fully busy core accumulates during
	// one refresh interval.
	TicksPerInterval *metrics.Const
	// Clock reads the boot clock.
	Clock metrics.Clock

	boot time.Time
}

// New probes the system and returns a Context for the given refresh interval.
func New(interval time.Duration, clock metrics.Clock) (*Context, error) {
	if interval <= 0 {
		interval = types.DefaultInterval
	}
	if clock == nil {
		clock = BootClock()
	}

	total, err := totalMemory()
	if err != nil {
		return nil, fmt.Errorf("reading total memory: %w", err)
	}
	ticks, err := clockTicks()
	if err != nil {
		return nil, fmt.Errorf("reading clock ticks: %w", err)
	}
	if ticks <= 0 {
		ticks = 100
	}

	return &Context{
		RefreshInterval:  interval,
		ClockTicks:       ticks,
		TotalMemory:      metrics.NewConst(int64(total)),
		TicksPerInterval: metrics.NewConst(ticks * int64(interval) / int64(time.Second)),
		Clock:            clock,
		boot:             wallNow().Add(-time.Duration(clock.Now())),
	}, nil
}

// TickDuration is the wall duration of one CPU time tick.
func (c *Context) TickDuration() time.Duration {
	return time.Second / time.Duration(c.ClockTicks)
}

// WallTime converts a boot clock timestamp to wall time.
func (c *Context) WallTime(ts metrics.Timestamp) time.Time {
	return c.boot.Add(time.Duration(ts))
}

// Now returns the current wall time.
func (c *Context) Now() time.Time {
	return wallNow()
}
