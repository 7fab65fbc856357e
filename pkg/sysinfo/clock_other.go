//go:build !linux

package sysinfo

import (
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/srodi/treetop/pkg/metrics"
)

// BootClock returns a clock counting from system boot.
func BootClock() metrics.Clock {
	boot := time.Now()
	if secs, err := host.BootTime(); err == nil {
		boot = time.Unix(int64(secs), 0)
	}
	return metrics.ClockFunc(func() metrics.Timestamp {
		return metrics.Timestamp(time.Since(boot))
	})
}
