package ui

import (
	"strconv"

	"github.com/srodi/treetop/pkg/metrics"
	"github.com/srodi/treetop/pkg/process"
	"github.com/srodi/treetop/pkg/report"
)

// Column identifies one column of the process table.
type Column int

const (
	ColCursor Column = iota
	ColPID
	ColState
	ColCPU
	ColMem
	ColTime
	ColDiskRead
	ColDiskWrite
	ColDiskTotal
	ColIO
	ColIOTotal
	ColCalls
	ColStart
	ColCommand
	numColumns
)

type columnSpec struct {
	header string
	width  int // 0 takes the remaining width
}

var columnSpecs = [numColumns]columnSpec{
	ColCursor:    {"☰", 1},
	ColPID:       {"PID", 7},
	ColState:     {"S", 1},
	ColCPU:       {"%CPU", 5},
	ColMem:       {"%MEM", 5},
	ColTime:      {"Time+", 8},
	ColDiskRead:  {"DiskR", 5},
	ColDiskWrite: {"DiskW", 5},
	ColDiskTotal: {"Disk+", 5},
	ColIO:        {"I/O", 5},
	ColIOTotal:   {"I/O+", 5},
	ColCalls:     {"Calls", 6},
	ColStart:     {"Start", 5},
	ColCommand:   {"Command", 0},
}

// Headers returns the column titles in display order.
func Headers() []string {
	headers := make([]string, numColumns)
	for i, spec := range columnSpecs {
		headers[i] = spec.header
	}
	return headers
}

const cursorMarker = "⮚"

// Row is one table line. Every gauge-backed cell holds a binding to a gauge
// built for the row's process, so the cell text follows the process until the
// row is rebound.
type Row struct {
	tree    *ProcessTree
	index   int
	process *process.Process
	cells   [numColumns]string
	closers []func()
}

// Process returns the process shown on the row.
func (r *Row) Process() *process.Process { return r.process }

// Cells returns the current cell texts.
func (r *Row) Cells() []string { return r.cells[:] }

// Cell returns the text of one column.
func (r *Row) Cell(c Column) string { return r.cells[c] }

func (r *Row) bind(p *process.Process) {
	r.unbind()
	r.process = p
	r.cells = [numColumns]string{}

	r.watch(ColCursor, r.tree.cursor, func(v int64) string {
		if v == int64(r.index) {
			return cursorMarker
		}
		return ""
	})
	if p == nil {
		return
	}

	ctx := r.tree.ctx
	interval := ctx.RefreshInterval
	cpuTime := r.own(metrics.Sum(p.UserTime(), p.SystemTime()))

	r.watch(ColState, p.State(), func(v int64) string {
		if v == 0 {
			return ""
		}
		return string(rune(byte(v)))
	})
	r.watch(ColCPU, r.own(metrics.Ratio(r.own(metrics.NewSlice(cpuTime, interval)), ctx.TicksPerInterval)), report.Percent)
	r.watch(ColMem, r.own(metrics.Ratio(p.Memory(), ctx.TotalMemory)), report.Percent)
	r.watch(ColTime, cpuTime, func(v int64) string { return report.CPUTime(v, ctx.TickDuration()) })

	r.watch(ColDiskRead, r.own(metrics.NewSlice(p.DiskReadBytes(), interval)), diskSize)
	r.watch(ColDiskWrite, r.own(metrics.NewSlice(p.DiskWriteBytes(), interval)), diskSize)
	diskWritten := r.own(metrics.Difference(p.DiskWriteBytes(), p.DiskCancelledWriteBytes()))
	r.watch(ColDiskTotal, r.own(metrics.Sum(p.DiskReadBytes(), diskWritten)), diskSize)

	transferred := r.own(metrics.Sum(p.ReadBytes(), p.WriteBytes()))
	r.watch(ColIO, r.own(metrics.NewSlice(transferred, interval)), diskSize)
	r.watch(ColIOTotal, transferred, diskSize)
	calls := r.own(metrics.Sum(p.ReadCalls(), p.WriteCalls()))
	r.watch(ColCalls, r.own(metrics.NewSlice(calls, interval)), func(v int64) string {
		return strconv.FormatInt(v, 10)
	})

	r.refreshStatic()
}

// refreshStatic recomputes the cells that are not backed by a gauge. The tree
// prefix changes when siblings come and go.
func (r *Row) refreshStatic() {
	p := r.process
	if p == nil {
		return
	}
	ctx := r.tree.ctx
	r.cells[ColPID] = strconv.Itoa(p.PID())
	r.cells[ColStart] = report.StartTime(ctx.WallTime(p.StartTime()), ctx.Now())
	r.cells[ColCommand] = report.TreePrefix(process.TreePosition(p)) + report.FormatCommand(p.CommandLine())
}

func (r *Row) unbind() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = r.closers[:0]
	r.process = nil
}

func (r *Row) watch(col Column, g metrics.Gauge, format func(int64) string) {
	b := metrics.Bind(g, func(g metrics.Gauge) {
		r.cells[col] = format(g.Value())
		r.tree.ScheduleDraw()
	})
	r.closers = append(r.closers, b.Close)
}

type closingGauge interface {
	metrics.Gauge
	Close()
}

// own registers a derived gauge to be detached when the row is rebound.
func (r *Row) own(g closingGauge) metrics.Gauge {
	r.closers = append(r.closers, g.Close)
	return g
}

func diskSize(v int64) string { return report.DiskSize(v, columnSpecs[ColDiskRead].width) }
