// Package tree keeps the cache of live processes and answers ordering and
// windowing queries over it without ever sorting the whole cache.
package tree

import (
	"fmt"
	"slices"

	"github.com/srodi/treetop/pkg/metrics"
	"github.com/srodi/treetop/pkg/process"
)

// Collection is the process cache. It is not safe for concurrent use.
type Collection struct {
	source process.Source
	clock  metrics.Clock
	procs  map[int]*process.Process
	order  *order
}

// NewCollection returns an empty cache fed by source.
func NewCollection(source process.Source, clock metrics.Clock) *Collection {
	return &Collection{
		source: source,
		clock:  clock,
		procs:  make(map[int]*process.Process),
		order:  newOrder(),
	}
}

// UpdateList rescans the source, samples every cached process, drops the ones
// that no longer exist and rebuilds the parent and child links. When the scan
// fails the cache is left as it was.
func (c *Collection) UpdateList() error {
	if err := c.source.Scan(func(pid int, dir string) {
		if _, ok := c.procs[pid]; !ok {
			c.procs[pid] = process.New(pid, dir, c.source)
		}
	}); err != nil {
		return fmt.Errorf("scanning processes: %w", err)
	}

	now := c.clock.Now()
	for pid, p := range c.procs {
		p.Update(now)
		if !p.Exists() {
			delete(c.procs, pid)
		}
	}

	for _, p := range c.procs {
		p.ClearChildren()
	}
	for _, p := range c.procs {
		parent := c.procs[p.PPID()]
		if parent == p {
			parent = nil
		}
		p.SetParent(parent)
		if parent != nil {
			parent.AddChild(p)
		}
	}
	// Parent pids sampled at different times can form a loop. The lowest pid
	// of a loop becomes a root.
	for _, p := range c.procs {
		chain := process.Ancestors(p)
		top := chain[0]
		if top.Parent() == nil {
			continue
		}
		loop := chain[:slices.Index(chain, top.Parent())+1]
		root := slices.MinFunc(loop, func(a, b *process.Process) int { return a.PID() - b.PID() })
		root.Parent().RemoveChild(root.PID())
		root.SetParent(nil)
	}

	c.order.reset()
	return nil
}

// Len reports the number of cached processes.
func (c *Collection) Len() int { return len(c.procs) }

// Process returns the cached process with the given pid.
func (c *Collection) Process(pid int) (*process.Process, bool) {
	p, ok := c.procs[pid]
	return p, ok
}

// Compare orders two processes in tree order.
func (c *Collection) Compare(a, b *process.Process) int {
	return c.order.compare(a, b)
}

// TopK returns the first k processes in tree order.
func (c *Collection) TopK(k int) []*process.Process {
	return selectBest(c.procs, k, nil, c.order.less)
}

// MoveCursor returns the process offset positions after current in tree
// order, or before it when offset is negative. The move stops at the first or
// last process.
func (c *Collection) MoveCursor(current *process.Process, offset int) *process.Process {
	if offset == 0 {
		return current
	}
	var found []*process.Process
	if offset > 0 {
		found = selectBest(c.procs, offset+1,
			func(p *process.Process) bool { return !c.order.less(p, current) },
			c.order.less)
	} else {
		found = selectBest(c.procs, -offset+1,
			func(p *process.Process) bool { return !c.order.less(current, p) },
			c.greater)
	}
	if len(found) == 0 {
		return current
	}
	return found[len(found)-1]
}

// Around returns up to capacity processes in tree order surrounding anchor
// and the index of anchor in that list. cursor is the row anchor occupied
// before; the window keeps it there when there is enough data on both sides.
// When refresh is set the cache is updated first and, if anchor disappeared,
// its deepest surviving ancestor becomes the anchor.
func (c *Collection) Around(anchor *process.Process, cursor, capacity int, refresh bool) ([]*process.Process, int, error) {
	chain := process.Ancestors(anchor)
	var err error
	if refresh {
		err = c.UpdateList()
	}

	anchor = c.resolve(chain)
	if anchor == nil {
		return nil, 0, err
	}
	if capacity <= 0 {
		return []*process.Process{anchor}, 0, err
	}
	cursor = max(0, min(cursor, capacity-1))

	total := len(c.procs)
	if total <= capacity {
		all := make([]*process.Process, 0, total)
		for _, p := range c.procs {
			all = append(all, p)
		}
		slices.SortFunc(all, c.order.compare)
		return all, slices.Index(all, anchor), err
	}

	countBefore := 0
	for _, p := range c.procs {
		if c.order.less(p, anchor) {
			countBefore++
		}
	}
	countAfter := total - countBefore - 1

	before := min(countBefore, max(cursor, capacity-countAfter-1))
	after := min(countAfter, max(capacity-cursor-1, capacity-countBefore-1))

	preceding := selectBest(c.procs, before,
		func(p *process.Process) bool { return c.order.less(p, anchor) },
		c.greater)
	following := selectBest(c.procs, after,
		func(p *process.Process) bool { return c.order.less(anchor, p) },
		c.order.less)

	window := make([]*process.Process, 0, len(preceding)+1+len(following))
	for i := len(preceding) - 1; i >= 0; i-- {
		window = append(window, preceding[i])
	}
	window = append(window, anchor)
	window = append(window, following...)
	return window, len(preceding), err
}

// resolve returns the deepest process of chain still in the cache, or the
// first process in tree order when none is.
func (c *Collection) resolve(chain []*process.Process) *process.Process {
	for i := len(chain) - 1; i >= 0; i-- {
		if p, ok := c.procs[chain[i].PID()]; ok && p == chain[i] {
			return p
		}
	}
	if first := c.TopK(1); len(first) > 0 {
		return first[0]
	}
	return nil
}

func (c *Collection) greater(a, b *process.Process) bool {
	return c.order.less(b, a)
}
