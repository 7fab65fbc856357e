// Package process models a live process: its identity, its place in the
// process tree and a lazily created gauge for every counter it exposes.
package process

import (
	"errors"
	"io/fs"
	"slices"
	"weak"

	"github.com/srodi/treetop/pkg/metrics"
	"github.com/srodi/treetop/pkg/types"
)

// ErrVanished is returned by a Source when the process no longer exists.
var ErrVanished = errors.New("process vanished")

// Source is the discovery and sampling collaborator.
type Source interface {
	// Scan calls visit once for every live pid with the directory backing it.
	Scan(visit func(pid int, dir string)) error
	// Sample reads the current raw counters of pid.
	Sample(pid int) (types.Sample, error)
	// CommandLine returns the argument vector of pid.
	CommandLine(pid int) ([]string, error)
}

// IsVanished reports whether err means the sampled process is gone.
func IsVanished(err error) bool {
	return errors.Is(err, ErrVanished) || errors.Is(err, fs.ErrNotExist)
}

// Process is one cached process. Its fields are only meaningful after Update.
type Process struct {
	pid    int
	dir    string
	source Source

	ppid       int
	comm       string
	exists     bool
	sampled    bool
	started    metrics.Timestamp
	lastUpdate metrics.Timestamp

	parent   *Process
	children map[int]weak.Pointer[Process]
	gauges   [numCounters]weak.Pointer[counterGauge]
}

// New returns an unsampled process.
func New(pid int, dir string, source Source) *Process {
	return &Process{pid: pid, dir: dir, source: source}
}

// Update samples the process. A process that vanished, or that never produced
// a readable sample, stops existing. Any other failure keeps the previous
// counters for this pass.
func (p *Process) Update(now metrics.Timestamp) {
	sample, err := p.source.Sample(p.pid)
	if err != nil {
		if !p.sampled || IsVanished(err) {
			p.exists = false
		}
		return
	}

	p.ppid = sample.PPID
	p.comm = sample.Comm
	p.started = metrics.Timestamp(sample.Started)
	p.lastUpdate = now
	p.exists = true
	p.sampled = true

	p.set(State, int64(sample.State), now)
	p.set(Memory, sample.RSS, now)
	p.set(UserTime, sample.UTime, now)
	p.set(SystemTime, sample.STime, now)

	if io := sample.IO; io != nil {
		p.set(ReadBytes, io.ReadBytes, now)
		p.set(WriteBytes, io.WriteBytes, now)
		p.set(ReadCalls, io.ReadCalls, now)
		p.set(WriteCalls, io.WriteCalls, now)
		p.set(DiskReadBytes, io.DiskReadBytes, now)
		p.set(DiskWriteBytes, io.DiskWriteBytes, now)
		p.set(DiskCancelledWriteBytes, io.DiskCancelledWriteBytes, now)
	}
}

func (p *Process) PID() int                      { return p.pid }
func (p *Process) PPID() int                     { return p.ppid }
func (p *Process) Dir() string                   { return p.dir }
func (p *Process) Command() string               { return p.comm }
func (p *Process) Exists() bool                  { return p.exists }
func (p *Process) StartTime() metrics.Timestamp  { return p.started }
func (p *Process) LastUpdate() metrics.Timestamp { return p.lastUpdate }

// CommandLine returns the argument vector, or the command name when the
// process has none (kernel threads) or it cannot be read.
func (p *Process) CommandLine() []string {
	args, err := p.source.CommandLine(p.pid)
	if err != nil || len(args) == 0 {
		return []string{p.comm}
	}
	return args
}

// Parent returns the parent process, or nil for a root.
func (p *Process) Parent() *Process { return p.parent }

// SetParent replaces the parent reference.
func (p *Process) SetParent(parent *Process) { p.parent = parent }

// AddChild records child under its pid without keeping it alive.
func (p *Process) AddChild(child *Process) {
	if p.children == nil {
		p.children = make(map[int]weak.Pointer[Process])
	}
	p.children[child.pid] = weak.Make(child)
}

// RemoveChild forgets the child with the given pid.
func (p *Process) RemoveChild(pid int) { delete(p.children, pid) }

// ClearChildren forgets every child.
func (p *Process) ClearChildren() { clear(p.children) }

// Children returns the live children ordered by pid.
func (p *Process) Children() []*Process {
	pids := make([]int, 0, len(p.children))
	for pid := range p.children {
		pids = append(pids, pid)
	}
	slices.Sort(pids)

	result := make([]*Process, 0, len(pids))
	for _, pid := range pids {
		if child := p.children[pid].Value(); child != nil {
			result = append(result, child)
		}
	}
	return result
}

// IsLastChild reports whether child is the child with the highest pid.
func (p *Process) IsLastChild(child *Process) bool {
	last := -1
	for pid, ptr := range p.children {
		if pid > last && ptr.Value() != nil {
			last = pid
		}
	}
	return last == child.pid
}

// Ancestors returns the chain from the root down to p, p included.
func Ancestors(p *Process) []*Process {
	var chain []*Process
	seen := make(map[*Process]struct{})
	for ; p != nil; p = p.parent {
		if _, ok := seen[p]; ok {
			break
		}
		seen[p] = struct{}{}
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain
}

// TreePosition reports, for every level below the root of p's chain, whether
// the process on that level is the last child of its parent.
func TreePosition(p *Process) []bool {
	chain := Ancestors(p)
	if len(chain) < 2 {
		return nil
	}
	result := make([]bool, 0, len(chain)-1)
	for i := 1; i < len(chain); i++ {
		result = append(result, chain[i-1].IsLastChild(chain[i]))
	}
	return result
}
