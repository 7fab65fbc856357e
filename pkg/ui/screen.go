package ui

import (
	"context"
	"log"
	"time"

	termui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

var termuiKeys = map[string]Key{
	"<Up>":       KeyUp,
	"k":          KeyUp,
	"<Down>":     KeyDown,
	"j":          KeyDown,
	"<PageUp>":   KeyPageUp,
	"<PageDown>": KeyPageDown,
	"<Home>":     KeyHome,
	"g":          KeyHome,
	"<End>":      KeyEnd,
	"G":          KeyEnd,
}

// tableChrome is the number of terminal lines the table uses besides the
// process rows: two border lines and the header.
const tableChrome = 3

// Screen renders a ProcessTree as a full-screen termui table.
type Screen struct {
	tree  *ProcessTree
	table *widgets.Table
	width int
}

// NewScreen returns a screen for tree. termui must be initialised.
func NewScreen(tree *ProcessTree) *Screen {
	table := widgets.NewTable()
	table.Title = " treetop "
	table.TextStyle = termui.NewStyle(termui.ColorWhite)
	table.BorderStyle = termui.NewStyle(termui.ColorGreen)
	table.RowSeparator = false
	table.FillRow = true
	s := &Screen{tree: tree, table: table}
	s.Resize(termui.TerminalDimensions())
	return s
}

// Resize lays the table out for a terminal of the given size.
func (s *Screen) Resize(width, height int) {
	s.width = width
	s.table.SetRect(0, 0, width, height)
	s.tree.Resize(height - tableChrome)
}

// Draw renders the current state of the model.
func (s *Screen) Draw() {
	rows := make([][]string, 0, len(s.tree.Rows())+1)
	rows = append(rows, Headers())
	for _, r := range s.tree.Rows() {
		rows = append(rows, r.Cells())
	}
	s.table.Rows = rows
	s.table.ColumnWidths = columnWidths(s.width - 2)
	s.table.RowStyles = map[int]termui.Style{
		0:                   termui.NewStyle(termui.ColorGreen, termui.ColorClear, termui.ModifierBold),
		s.tree.Cursor() + 1: termui.NewStyle(termui.ColorBlack, termui.ColorCyan),
	}
	termui.Render(s.table)
}

// Run serves the model until ctx is done or the user quits. Ticks and
// terminal events are handled on this goroutine only.
func (s *Screen) Run(ctx context.Context, interval time.Duration) {
	s.refresh()
	s.tree.FlushDraw(s.Draw)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	events := termui.PollEvents()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh()
		case e := <-events:
			switch {
			case e.ID == "q" || e.ID == "<C-c>":
				return
			case e.Type == termui.ResizeEvent:
				payload := e.Payload.(termui.Resize)
				s.Resize(payload.Width, payload.Height)
				termui.Clear()
			case e.Type == termui.KeyboardEvent:
				if key, ok := termuiKeys[e.ID]; ok {
					s.tree.OnKey(key)
				}
			}
		}
		s.tree.FlushDraw(s.Draw)
	}
}

func (s *Screen) refresh() {
	if err := s.tree.Update(); err != nil {
		log.Printf("refresh failed: %v", err)
	}
}

// columnWidths gives every fixed column its width and the command column the
// rest of inner, accounting for the one-cell separators.
func columnWidths(inner int) []int {
	widths := make([]int, numColumns)
	used := int(numColumns) - 1
	for i, spec := range columnSpecs {
		widths[i] = spec.width
		used += spec.width
	}
	widths[ColCommand] = max(inner-used, len(columnSpecs[ColCommand].header))
	return widths
}
