package report

import (
	"testing"
	"time"
)

func TestDiskSize(t *testing.T) {
	cases := []struct {
		size     int64
		expected string
	}{
		{0, "   0B"},
		{9999, "9999B"},
		{10000, "  10K"},
		{10*1000*1024 - 1, "10000K"},
		{10 * 1000 * 1024, "  10M"},
		{5 << 30, "5120M"},
		{10 * 1000 * 1024 * 1024, "  10G"},
		{20 << 40, "  20T"},
	}
	for _, tc := range cases {
		if got := DiskSize(tc.size, 5); got != tc.expected {
			t.Fatalf("DiskSize(%d): expected %q, got %q", tc.size, tc.expected, got)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := map[int64]string{
		0:     "0.0",
		1234:  "12.3",
		10000: "100.0",
		25000: "250.0",
	}
	for ratio, expected := range cases {
		if got := Percent(ratio); got != expected {
			t.Fatalf("Percent(%d): expected %q, got %q", ratio, expected, got)
		}
	}
}

func TestCPUTime(t *testing.T) {
	tick := 10 * time.Millisecond
	cases := []struct {
		ticks    int64
		expected string
	}{
		{0, "0:00:00"},
		{99, "0:00:00"},
		{100 * 61, "0:01:01"},
		{100 * (26*3600 + 5), "26:00:05"},
	}
	for _, tc := range cases {
		if got := CPUTime(tc.ticks, tick); got != tc.expected {
			t.Fatalf("CPUTime(%d): expected %q, got %q", tc.ticks, tc.expected, got)
		}
	}
}

func TestStartTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	cases := []struct {
		start    time.Time
		expected string
	}{
		{now.Add(-90 * time.Minute), "10:30"},
		{time.Date(2024, 3, 2, 8, 0, 0, 0, time.Local), "Mar02"},
		{time.Date(2021, 3, 2, 8, 0, 0, 0, time.Local), "2021"},
	}
	for _, tc := range cases {
		if got := StartTime(tc.start, now); got != tc.expected {
			t.Fatalf("StartTime(%v): expected %q, got %q", tc.start, tc.expected, got)
		}
	}
}

func TestTreePrefix(t *testing.T) {
	cases := []struct {
		name     string
		last     []bool
		expected string
	}{
		{"root", nil, ""},
		{"firstChild", []bool{false}, "├─"},
		{"lastChild", []bool{true}, "└─"},
		{"nestedUnderMiddle", []bool{false, true}, "│ └─"},
		{"nestedUnderLast", []bool{true, false}, "  ├─"},
	}
	for _, tc := range cases {
		if got := TreePrefix(tc.last); got != tc.expected {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestFormatCommandEscapesWhitespace(t *testing.T) {
	got := FormatCommand([]string{"/usr/bin/my tool", "--sep=\t", "line\r\n"})
	expected := "/usr/bin/my␣tool --sep=⭾ line␍␊"
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
	if got := FormatCommand(nil); got != "" {
		t.Fatalf("expected empty command, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("systemd", 4); got != "syst" {
		t.Fatalf("expected syst, got %q", got)
	}
	if got := Truncate("└─bash", 3); got != "└─b" {
		t.Fatalf("expected box drawing to count as one column, got %q", got)
	}
	if got := Truncate("bash", 0); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
