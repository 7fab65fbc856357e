package sysinfo

import (
	"errors"
	"testing"
	"time"

	"github.com/srodi/treetop/pkg/metrics"
)

func stubSystem(t *testing.T, total uint64, ticks int64) {
	t.Helper()
	origMem, origTicks, origNow := totalMemory, clockTicks, wallNow
	t.Cleanup(func() {
		totalMemory, clockTicks, wallNow = origMem, origTicks, origNow
	})
	totalMemory = func() (uint64, error) { return total, nil }
	clockTicks = func() (int64, error) { return ticks, nil }
	wallNow = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
}

func fixedClock(d time.Duration) metrics.Clock {
	return metrics.ClockFunc(func() metrics.Timestamp { return metrics.Timestamp(d) })
}

func TestNewComputesDerivedConstants(t *testing.T) {
	stubSystem(t, 8<<30, 100)

	ctx, err := New(2*time.Second, fixedClock(time.Hour))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ctx.TotalMemory.Value() != 8<<30 {
		t.Fatalf("unexpected total memory %d", ctx.TotalMemory.Value())
	}
	if ctx.TicksPerInterval.Value() != 200 {
		t.Fatalf("expected 200 ticks per interval, got %d", ctx.TicksPerInterval.Value())
	}
	if ctx.TickDuration() != 10*time.Millisecond {
		t.Fatalf("unexpected tick duration %v", ctx.TickDuration())
	}
	if ctx.TotalMemory.LastUpdate() != metrics.Always {
		t.Fatalf("constants must always be fresh")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	stubSystem(t, 1, 0)

	ctx, err := New(0, fixedClock(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ctx.RefreshInterval != time.Second {
		t.Fatalf("expected default interval, got %v", ctx.RefreshInterval)
	}
	if ctx.ClockTicks != 100 {
		t.Fatalf("expected fallback of 100 ticks, got %d", ctx.ClockTicks)
	}
}

func TestWallTimeIsRelativeToBoot(t *testing.T) {
	stubSystem(t, 1, 100)

	ctx, err := New(time.Second, fixedClock(time.Hour))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := ctx.WallTime(metrics.Timestamp(30 * time.Minute))
	want := time.Date(2024, 5, 1, 11, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNewPropagatesProbeErrors(t *testing.T) {
	stubSystem(t, 1, 100)
	totalMemory = func() (uint64, error) { return 0, errors.New("no meminfo") }

	if _, err := New(time.Second, fixedClock(0)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBootClockAdvances(t *testing.T) {
	c := BootClock()
	a := c.Now()
	time.Sleep(time.Millisecond)
	if b := c.Now(); b <= a {
		t.Fatalf("boot clock did not advance: %d then %d", a, b)
	}
}
