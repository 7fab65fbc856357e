package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	termui "github.com/gizak/termui/v3"
	"golang.org/x/term"

	"github.com/srodi/treetop/pkg/collector/fileio"
	"github.com/srodi/treetop/pkg/collector/procfs"
	"github.com/srodi/treetop/pkg/config"
	"github.com/srodi/treetop/pkg/process"
	"github.com/srodi/treetop/pkg/sysinfo"
	"github.com/srodi/treetop/pkg/tree"
	"github.com/srodi/treetop/pkg/types"
	"github.com/srodi/treetop/pkg/ui"
)

// bannerLines is the height of the banner and status line printed above the
// plain table.
const bannerLines = 10

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	interactive := !cfg.Once && isTerminal(os.Stdout) && isTerminal(os.Stdin)
	if interactive {
		closeLog, err := redirectLog(cfg.LogFile)
		if err != nil {
			log.Fatalf("opening log file: %v", err)
		}
		defer closeLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sys, err := sysinfo.New(cfg.Interval, nil)
	if err != nil {
		log.Fatalf("probing system: %v", err)
	}

	source, closeSource, err := openSource(cfg, sys)
	if err != nil {
		log.Fatalf("initializing process source: %v", err)
	}
	defer closeSource()

	coll := tree.NewCollection(source, sys.Clock)
	if interactive {
		err = runScreen(ctx, coll, sys)
	} else {
		err = runOnce(ctx, coll, sys, cfg)
	}
	if err != nil {
		log.Printf("treetop: %v", err)
	}
}

// openSource returns the procfs source, wrapped with the syscall tracer when
// it is enabled and loads. A tracer that fails to load is logged and skipped.
func openSource(cfg *config.Config, sys *sysinfo.Context) (process.Source, func(), error) {
	procs, err := procfs.New(cfg.ProcRoot, sys.TickDuration())
	if err != nil {
		return nil, nil, err
	}
	if !cfg.TraceIO {
		return procs, func() {}, nil
	}

	tracer, err := fileio.NewCollector(cfg.TraceObject)
	if err != nil {
		log.Printf("file io tracer unavailable, using procfs counters: %v", err)
		return procs, func() {}, nil
	}
	return fileio.NewOverlay(procs, tracer), func() {
		if err := tracer.Close(); err != nil {
			log.Printf("closing file io tracer: %v", err)
		}
	}, nil
}

func runScreen(ctx context.Context, coll *tree.Collection, sys *sysinfo.Context) error {
	if err := termui.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer termui.Close()

	pt := ui.NewProcessTree(coll, sys, types.DefaultRows)
	defer pt.Close()
	ui.NewScreen(pt).Run(ctx, sys.RefreshInterval)
	return nil
}

// runOnce samples twice, one interval apart, so the rate columns are filled,
// then prints the top of the tree.
func runOnce(ctx context.Context, coll *tree.Collection, sys *sysinfo.Context, cfg *config.Config) error {
	width, rows := 0, cfg.Rows
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		if rows == 0 {
			rows = h - bannerLines - 1
		}
	}
	if rows <= 0 {
		rows = types.DefaultRows
	}

	pt := ui.NewProcessTree(coll, sys, rows)
	defer pt.Close()
	if err := pt.Update(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(sys.RefreshInterval):
	}
	if err := pt.Update(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if isTerminal(os.Stdout) {
		buf.WriteString(ui.Banner())
	}
	fmt.Fprintf(&buf, "Updated: %s | Interval: %v | Processes: %d\n", sys.Now().Format(time.RFC3339), sys.RefreshInterval, coll.Len())
	if err := ui.WritePlain(&buf, pt, width); err != nil {
		return err
	}
	_, err := buf.WriteTo(os.Stdout)
	return err
}

// redirectLog sends the standard logger to path while the screen owns the
// terminal. An empty path discards log output.
func redirectLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
