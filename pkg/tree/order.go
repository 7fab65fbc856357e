package tree

import (
	"github.com/srodi/treetop/pkg/process"
)

// order compares processes by their root-to-self ancestor pid chains. Chains
// are cached until the next refresh, since parent links only change there.
type order struct {
	keys map[*process.Process][]int
}

func newOrder() *order {
	return &order{keys: make(map[*process.Process][]int)}
}

func (o *order) reset() {
	clear(o.keys)
}

func (o *order) key(p *process.Process) []int {
	if k, ok := o.keys[p]; ok {
		return k
	}
	chain := process.Ancestors(p)
	k := make([]int, len(chain))
	for i, a := range chain {
		k[i] = a.PID()
	}
	o.keys[p] = k
	return k
}

// compare returns a negative number when a precedes b in tree order, a
// positive one when b precedes a and zero when they are the same process.
// An ancestor precedes its descendants and siblings are ordered by pid.
func (o *order) compare(a, b *process.Process) int {
	if a == b {
		return 0
	}
	ka, kb := o.key(a), o.key(b)
	for i := range min(len(ka), len(kb)) {
		if ka[i] != kb[i] {
			if ka[i] < kb[i] {
				return -1
			}
			return 1
		}
	}
	return len(ka) - len(kb)
}

func (o *order) less(a, b *process.Process) bool {
	return o.compare(a, b) < 0
}
