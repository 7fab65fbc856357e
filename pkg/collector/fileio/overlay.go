// Package fileio traces read and write syscalls per process with eBPF and
// substitutes the traced counters into the samples of another source.
package fileio

import (
	"log"

	"github.com/srodi/treetop/pkg/process"
	"github.com/srodi/treetop/pkg/types"
)

// Tracer is the part of Collector used by Overlay.
type Tracer interface {
	Snapshot() (map[uint32]types.TracedIO, error)
	Prune(live func(pid uint32) bool) error
}

// Overlay wraps a process.Source and replaces its read/write byte and call
// counters with the values accumulated by the tracer. Disk counters are kept.
// The tracer map is read once per Scan.
type Overlay struct {
	process.Source
	tracer Tracer
	traced map[uint32]types.TracedIO
}

// NewOverlay returns a source whose I/O counters come from tracer.
func NewOverlay(src process.Source, tracer Tracer) *Overlay {
	return &Overlay{Source: src, tracer: tracer}
}

// Scan implements process.Source. Entries of pids that were not visited are
// pruned from the tracer before the snapshot is taken.
func (o *Overlay) Scan(visit func(pid int, dir string)) error {
	live := make(map[uint32]struct{})
	err := o.Source.Scan(func(pid int, dir string) {
		live[uint32(pid)] = struct{}{}
		visit(pid, dir)
	})
	if err != nil {
		return err
	}

	if err := o.tracer.Prune(func(pid uint32) bool {
		_, ok := live[pid]
		return ok
	}); err != nil {
		log.Printf("pruning traced io: %v", err)
	}
	traced, err := o.tracer.Snapshot()
	if err != nil {
		log.Printf("reading traced io: %v", err)
		return nil
	}
	o.traced = traced
	return nil
}

// Sample implements process.Source.
func (o *Overlay) Sample(pid int) (types.Sample, error) {
	s, err := o.Source.Sample(pid)
	if err != nil || o.traced == nil {
		return s, err
	}

	io := types.IOCounters{}
	if s.IO != nil {
		io = *s.IO
	}
	t := o.traced[uint32(pid)]
	io.ReadBytes = int64(t.ReadBytes)
	io.WriteBytes = int64(t.WriteBytes)
	io.ReadCalls = int64(t.Reads)
	io.WriteCalls = int64(t.Writes)
	s.IO = &io
	return s, nil
}
