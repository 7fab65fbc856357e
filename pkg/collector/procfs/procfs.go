// Package procfs discovers and samples processes from a procfs mount.
package procfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	promfs "github.com/prometheus/procfs"
	"golang.org/x/sys/unix"

	"github.com/srodi/treetop/pkg/process"
	"github.com/srodi/treetop/pkg/types"
)

// DefaultRoot is the usual procfs mount point.
const DefaultRoot = "/proc"

// procReadFile allows tests to stub reading /proc/PID/comm.
var procReadFile = os.ReadFile

// Collector implements process.Source on top of a procfs mount.
type Collector struct {
	root string
	fs   promfs.FS
	tick time.Duration
}

// New opens the procfs mount at root. tick is the duration of one clock tick,
// used to convert the start time of a process.
func New(root string, tick time.Duration) (*Collector, error) {
	if root == "" {
		root = DefaultRoot
	}
	mount, err := promfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("opening procfs at %s: %w", root, err)
	}
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	return &Collector{root: root, fs: mount, tick: tick}, nil
}

// Scan implements process.Source.
func (c *Collector) Scan(visit func(pid int, dir string)) error {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}
	for _, p := range procs {
		visit(p.PID, c.dir(p.PID))
	}
	return nil
}

// Sample implements process.Source. The I/O counters are left nil when they
// cannot be read, which is the common case for processes of other users.
func (c *Collector) Sample(pid int) (types.Sample, error) {
	p, err := c.fs.Proc(pid)
	if err != nil {
		return types.Sample{}, c.classify(pid, err)
	}
	stat, err := p.Stat()
	if err != nil {
		return types.Sample{}, c.classify(pid, fmt.Errorf("reading stat of pid %d: %w", pid, err))
	}

	sample := types.Sample{
		PID:     stat.PID,
		PPID:    stat.PPID,
		Comm:    stat.Comm,
		State:   stateByte(stat.State),
		RSS:     int64(stat.ResidentMemory()),
		UTime:   int64(stat.UTime),
		STime:   int64(stat.STime),
		Started: time.Duration(stat.Starttime) * c.tick,
	}
	if sample.Comm == "" {
		sample.Comm = commForPID(c.root, pid)
	}

	if io, err := p.IO(); err == nil {
		sample.IO = &types.IOCounters{
			ReadBytes:               int64(io.RChar),
			WriteBytes:              int64(io.WChar),
			ReadCalls:               int64(io.SyscR),
			WriteCalls:              int64(io.SyscW),
			DiskReadBytes:           int64(io.ReadBytes),
			DiskWriteBytes:          int64(io.WriteBytes),
			DiskCancelledWriteBytes: io.CancelledWriteBytes,
		}
	}
	return sample, nil
}

// CommandLine implements process.Source.
func (c *Collector) CommandLine(pid int) ([]string, error) {
	p, err := c.fs.Proc(pid)
	if err != nil {
		return nil, c.classify(pid, err)
	}
	args, err := p.CmdLine()
	if err != nil {
		return nil, c.classify(pid, fmt.Errorf("reading cmdline of pid %d: %w", pid, err))
	}
	return args, nil
}

func (c *Collector) dir(pid int) string {
	return filepath.Join(c.root, strconv.Itoa(pid))
}

// classify wraps err with process.ErrVanished when the pid is gone.
func (c *Collector) classify(pid int, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("%w: %w", process.ErrVanished, err)
	}
	if _, statErr := os.Stat(c.dir(pid)); errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", process.ErrVanished, err)
	}
	return err
}

func stateByte(state string) byte {
	if state == "" {
		return '?'
	}
	return state[0]
}

func commForPID(root string, pid int) string {
	path := filepath.Join(root, strconv.Itoa(pid), "comm")
	data, err := procReadFile(path)
	if err != nil {
		return fmt.Sprintf("pid-%d", pid)
	}
	comm := strings.TrimSpace(string(data))
	if comm == "" {
		comm = fmt.Sprintf("pid-%d", pid)
	}
	return comm
}
