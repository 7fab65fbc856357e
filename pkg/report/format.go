// Package report turns gauge values into the text shown in table cells.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/srodi/treetop/pkg/metrics"
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
	tib = 1024 * gib
)

// DiskSize renders a byte count right aligned in width columns. The unit is
// switched once the number would need more than four digits.
func DiskSize(size int64, width int) string {
	n := max(width-1, 0)
	switch {
	case size < 10*1000:
		return fmt.Sprintf("%*dB", n, size)
	case size < 10*1000*kib:
		return fmt.Sprintf("%*.0fK", n, float64(size)/kib)
	case size < 10*1000*mib:
		return fmt.Sprintf("%*.0fM", n, float64(size)/mib)
	case size < 10*1000*gib:
		return fmt.Sprintf("%*.0fG", n, float64(size)/gib)
	default:
		return fmt.Sprintf("%*.0fT", n, float64(size)/tib)
	}
}

// Percent renders a ratio gauge value (percent times 100) with one decimal.
func Percent(ratio int64) string {
	return fmt.Sprintf("%.1f", float64(ratio)/(metrics.RatioScale/100))
}

// CPUTime renders accumulated CPU time as H:MM:SS, truncated to the second.
func CPUTime(ticks int64, tick time.Duration) string {
	d := time.Duration(ticks) * tick
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// StartTime renders when a process started relative to now: the clock time
// for the last day, the date for the last year, the year otherwise.
func StartTime(start, now time.Time) string {
	start = start.Local()
	switch age := now.Sub(start); {
	case age < 24*time.Hour:
		return start.Format("15:04")
	case age < 365*24*time.Hour:
		return start.Format("Jan02")
	default:
		return start.Format("2006")
	}
}

// TreePrefix draws the branch lines in front of a command. last holds, for
// every level below the root, whether the process on that level is the last
// child of its parent.
func TreePrefix(last []bool) string {
	var b strings.Builder
	for i, isLast := range last {
		final := i == len(last)-1
		switch {
		case final && isLast:
			b.WriteString("└─")
		case final:
			b.WriteString("├─")
		case isLast:
			b.WriteString("  ")
		default:
			b.WriteString("│ ")
		}
	}
	return b.String()
}

var argEscaper = strings.NewReplacer(" ", "␣", "\t", "⭾", "\r", "␍", "\n", "␊")

// FormatCommand joins an argument vector with spaces after making whitespace
// inside arguments visible.
func FormatCommand(args []string) string {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = argEscaper.Replace(arg)
	}
	return strings.Join(escaped, " ")
}

// Truncate cuts s to at most width terminal columns.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}
