//go:build linux

package sysinfo

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/srodi/treetop/pkg/metrics"
)

// BootClock returns a clock counting from system boot, including suspend,
// which is the epoch of process start times.
func BootClock() metrics.Clock {
	return metrics.ClockFunc(func() metrics.Timestamp {
		var ts unix.Timespec
		if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
			return metrics.Timestamp(time.Since(processStart))
		}
		return metrics.Timestamp(ts.Nano())
	})
}

var processStart = time.Now()
