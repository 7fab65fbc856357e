// Package ui presents the process tree: a table model whose rows are bound to
// process gauges, a termui screen and a plain text printer.
package ui

import (
	"github.com/srodi/treetop/pkg/metrics"
	"github.com/srodi/treetop/pkg/process"
	"github.com/srodi/treetop/pkg/sysinfo"
	"github.com/srodi/treetop/pkg/tree"
)

// Key is a navigation key understood by ProcessTree.
type Key int

const (
	KeyUp Key = iota + 1
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)

// ProcessTree is the table model. It owns one Row per visible line and a
// cursor gauge holding the selected row index. Handlers never draw; they call
// ScheduleDraw and the event loop draws once through FlushDraw.
type ProcessTree struct {
	coll   *tree.Collection
	ctx    *sysinfo.Context
	rows   []*Row
	cursor *metrics.Leaf
	height int

	drawPending bool
}

// NewProcessTree returns an empty model showing at most height rows.
func NewProcessTree(coll *tree.Collection, ctx *sysinfo.Context, height int) *ProcessTree {
	return &ProcessTree{
		coll:   coll,
		ctx:    ctx,
		cursor: metrics.NewLeaf(ctx.Clock),
		height: max(height, 1),
	}
}

// Rows returns the visible rows, top first.
func (t *ProcessTree) Rows() []*Row { return t.rows }

// Cursor returns the index of the selected row.
func (t *ProcessTree) Cursor() int { return int(t.cursor.Value()) }

// Height returns the row capacity.
func (t *ProcessTree) Height() int { return t.height }

// Selected returns the process under the cursor, or nil before the first
// update.
func (t *ProcessTree) Selected() *process.Process {
	if len(t.rows) == 0 {
		return nil
	}
	return t.rows[t.Cursor()].process
}

// Update refreshes the process list and re-centers the window on the
// selected process. It is called once per refresh interval.
func (t *ProcessTree) Update() error {
	if selected := t.Selected(); selected != nil {
		return t.show(selected, t.Cursor(), true)
	}
	if err := t.coll.UpdateList(); err != nil {
		return err
	}
	t.updateTable(t.coll.TopK(t.height))
	return nil
}

// Resize changes the row capacity, keeping the selection.
func (t *ProcessTree) Resize(height int) {
	t.height = max(height, 1)
	if selected := t.Selected(); selected != nil {
		_ = t.show(selected, t.Cursor(), false)
	}
	t.ScheduleDraw()
}

// OnKey handles a navigation key and reports whether it was consumed.
func (t *ProcessTree) OnKey(key Key) bool {
	if len(t.rows) == 0 {
		return false
	}
	cursor := t.Cursor()
	switch key {
	case KeyUp:
		if cursor > 0 {
			t.cursor.Update(int64(cursor - 1))
		} else {
			t.moveCursor(-1)
		}
	case KeyDown:
		if cursor < len(t.rows)-1 {
			t.cursor.Update(int64(cursor + 1))
		} else {
			t.moveCursor(1)
		}
	case KeyPageUp:
		t.moveCursor(-t.height)
	case KeyPageDown:
		t.moveCursor(t.height)
	case KeyHome:
		if first := t.coll.TopK(1); len(first) > 0 {
			_ = t.show(first[0], 0, false)
		}
	case KeyEnd:
		last := t.coll.MoveCursor(t.Selected(), t.coll.Len())
		_ = t.show(last, t.height-1, false)
	default:
		return false
	}
	t.ScheduleDraw()
	return true
}

// ScheduleDraw requests a redraw once the current event has been handled.
func (t *ProcessTree) ScheduleDraw() { t.drawPending = true }

// FlushDraw calls draw if a redraw was scheduled since the last flush.
func (t *ProcessTree) FlushDraw(draw func()) {
	if !t.drawPending {
		return
	}
	t.drawPending = false
	draw()
}

// Close detaches every row from its gauges.
func (t *ProcessTree) Close() {
	for _, r := range t.rows {
		r.unbind()
	}
	t.rows = nil
}

func (t *ProcessTree) moveCursor(offset int) {
	target := t.coll.MoveCursor(t.Selected(), offset)
	_ = t.show(target, t.Cursor(), false)
}

func (t *ProcessTree) show(anchor *process.Process, cursor int, refresh bool) error {
	window, cursor, err := t.coll.Around(anchor, cursor, t.height, refresh)
	t.updateTable(window)
	t.cursor.Update(int64(cursor))
	return err
}

// updateTable rebinds the rows to ps. A row keeps its bindings when it shows
// the same process as before; a newly bound process is sampled right away so
// its cells are not blank until the next tick.
func (t *ProcessTree) updateTable(ps []*process.Process) {
	now := t.ctx.Clock.Now()
	for i, p := range ps {
		if i == len(t.rows) {
			t.rows = append(t.rows, &Row{tree: t, index: i})
		}
		r := t.rows[i]
		if r.process == p {
			r.refreshStatic()
			continue
		}
		r.bind(p)
		p.Update(now)
	}
	for _, r := range t.rows[len(ps):] {
		r.unbind()
	}
	clear(t.rows[len(ps):])
	t.rows = t.rows[:len(ps)]

	if cursor := t.Cursor(); cursor >= len(t.rows) {
		t.cursor.Update(int64(max(len(t.rows)-1, 0)))
	}
	t.ScheduleDraw()
}
