package types

import "time"

// DefaultInterval is the refresh period used when none is configured. It is
// also the period of every windowed rate shown in the table.
const DefaultInterval = time.Second

// DefaultRows is the plain-mode row capacity when the terminal height is unknown.
const DefaultRows = 40

// Sample is one raw reading of a process taken by the sampling collaborator.
type Sample struct {
	PID     int
	PPID    int
	Comm    string
	State   byte
	RSS     int64         // resident memory in bytes
	UTime   int64         // user time in clock ticks
	STime   int64         // system time in clock ticks
	Started time.Duration // start time since boot
	IO      *IOCounters
}

// IOCounters holds the per-process I/O accumulators. A nil *IOCounters in a
// Sample means they could not be read this pass (commonly a permission error).
type IOCounters struct {
	ReadBytes               int64
	WriteBytes              int64
	ReadCalls               int64
	WriteCalls              int64
	DiskReadBytes           int64
	DiskWriteBytes          int64
	DiskCancelledWriteBytes int64
}

// TracedIO is what the kernel I/O tracer accumulated for one PID since it
// was attached.
type TracedIO struct {
	PID        uint32
	Reads      uint64
	ReadBytes  uint64
	Writes     uint64
	WriteBytes uint64
}
