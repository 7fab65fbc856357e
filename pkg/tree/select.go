package tree

import (
	"container/heap"
	"slices"

	"github.com/srodi/treetop/pkg/process"
)

// boundedHeap keeps the k best elements seen so far. The worst of them sits
// at the root so it can be replaced in O(log k).
type boundedHeap struct {
	items  []*process.Process
	better func(a, b *process.Process) bool
}

func (h *boundedHeap) Len() int           { return len(h.items) }
func (h *boundedHeap) Less(i, j int) bool { return h.better(h.items[j], h.items[i]) }
func (h *boundedHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *boundedHeap) Push(x any)         { h.items = append(h.items, x.(*process.Process)) }
func (h *boundedHeap) Pop() any {
	n := len(h.items) - 1
	x := h.items[n]
	h.items[n] = nil
	h.items = h.items[:n]
	return x
}

// selectBest returns the k elements of candidates for which keep is true that
// come first under better, ordered best first. It runs in O(n log k).
func selectBest(candidates map[int]*process.Process, k int, keep func(*process.Process) bool, better func(a, b *process.Process) bool) []*process.Process {
	if k <= 0 {
		return nil
	}
	h := &boundedHeap{items: make([]*process.Process, 0, min(k, len(candidates))), better: better}
	for _, p := range candidates {
		if keep != nil && !keep(p) {
			continue
		}
		if h.Len() < k {
			heap.Push(h, p)
			continue
		}
		if better(p, h.items[0]) {
			h.items[0] = p
			heap.Fix(h, 0)
		}
	}
	result := h.items
	slices.SortFunc(result, func(a, b *process.Process) int {
		switch {
		case better(a, b):
			return -1
		case better(b, a):
			return 1
		}
		return 0
	})
	return result
}
