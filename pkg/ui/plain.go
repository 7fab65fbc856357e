package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/srodi/treetop/pkg/report"
)

// WritePlain prints the visible rows of tree as an aligned text table without
// the cursor column. Lines are cut to width terminal columns when width is
// positive.
func WritePlain(w io.Writer, tree *ProcessTree, width int) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', tabwriter.AlignRight)
	writeLine := func(cells []string) {
		// The command is the trailing cell, which tabwriter leaves unaligned.
		fmt.Fprintf(tw, "%s\t %s\n", strings.Join(cells[ColPID:ColCommand], "\t"), cells[ColCommand])
	}
	writeLine(Headers())
	for _, r := range tree.Rows() {
		writeLine(r.Cells())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if line == "" {
			continue
		}
		if width > 0 {
			line = report.Truncate(strings.TrimSuffix(line, "\n"), width) + "\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
