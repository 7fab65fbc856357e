//go:build linux
// +build linux

package fileio

import (
	"errors"
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"

	"github.com/srodi/treetop/pkg/types"
)

// Collector owns the eBPF programs and the per-pid map that count read and
// write syscalls.
type Collector struct {
	objs  fileIOObjects
	links []link.Link
}

const pruneSweepRetries = 3

type fileIOObjects struct {
	HandleExitRead  *ebpf.Program `ebpf:"handle_exit_read"`
	HandleExitWrite *ebpf.Program `ebpf:"handle_exit_write"`
	PidIo           *ebpf.Map     `ebpf:"pid_io"`
}

func (o *fileIOObjects) Close() error {
	return errors.Join(o.HandleExitRead.Close(), o.HandleExitWrite.Close(), o.PidIo.Close())
}

// NewCollector loads the compiled object at path and attaches it to the
// syscalls:sys_exit_read and syscalls:sys_exit_write tracepoints.
func NewCollector(path string) (*Collector, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("removing memlock limit: %w", err)
	}

	spec, err := ebpf.LoadCollectionSpec(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	var objs fileIOObjects
	if err := spec.LoadAndAssign(&objs, nil); err != nil {
		return nil, fmt.Errorf("loading bpf objects: %w", err)
	}

	c := &Collector{objs: objs}
	for _, tp := range []struct {
		name string
		prog *ebpf.Program
	}{
		{"sys_exit_read", objs.HandleExitRead},
		{"sys_exit_write", objs.HandleExitWrite},
	} {
		l, err := link.Tracepoint("syscalls", tp.name, tp.prog, nil)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("attaching tracepoint %s: %w", tp.name, err)
		}
		c.links = append(c.links, l)
	}
	return c, nil
}

// Close detaches the tracepoints and releases the BPF resources.
func (c *Collector) Close() error {
	var err error
	for _, l := range c.links {
		err = errors.Join(err, l.Close())
	}
	c.links = nil
	return errors.Join(err, c.objs.Close())
}

// Snapshot returns the counters accumulated for every traced pid.
func (c *Collector) Snapshot() (map[uint32]types.TracedIO, error) {
	stats := make(map[uint32]types.TracedIO)

	iter := c.objs.PidIo.Iterate()
	var pid uint32
	var stat ioStat
	for iter.Next(&pid, &stat) {
		stats[pid] = types.TracedIO{
			PID:        pid,
			Reads:      stat.Reads,
			ReadBytes:  stat.ReadBytes,
			Writes:     stat.Writes,
			WriteBytes: stat.WriteBytes,
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterating io stats: %w", err)
	}
	return stats, nil
}

// Prune deletes the entries of pids for which live reports false.
func (c *Collector) Prune(live func(pid uint32) bool) error {
	for attempt := 1; attempt <= pruneSweepRetries; attempt++ {
		iter := c.objs.PidIo.Iterate()
		var pid uint32
		var stat ioStat
		for iter.Next(&pid, &stat) {
			if live(pid) {
				continue
			}
			if err := c.objs.PidIo.Delete(&pid); err != nil && !errors.Is(err, ebpf.ErrKeyNotExist) {
				return fmt.Errorf("clearing pid %d: %w", pid, err)
			}
		}
		if err := iter.Err(); err != nil {
			if errors.Is(err, ebpf.ErrIterationAborted) && attempt < pruneSweepRetries {
				continue
			}
			return err
		}
		break
	}
	return nil
}

type ioStat struct {
	Reads      uint64
	ReadBytes  uint64
	Writes     uint64
	WriteBytes uint64
}
