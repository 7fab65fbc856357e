//go:build !linux
// +build !linux

package fileio

import (
	"errors"

	"github.com/srodi/treetop/pkg/types"
)

var errUnsupported = errors.New("file io tracer requires linux")

// Collector is a placeholder on non-Linux platforms.
type Collector struct{}

// NewCollector returns an error because eBPF is only supported on Linux.
func NewCollector(path string) (*Collector, error) {
	return nil, errUnsupported
}

// Snapshot always fails on unsupported platforms.
func (c *Collector) Snapshot() (map[uint32]types.TracedIO, error) {
	return nil, errUnsupported
}

// Prune does nothing on unsupported platforms.
func (c *Collector) Prune(live func(pid uint32) bool) error {
	return nil
}

// Close is a no-op stub.
func (c *Collector) Close() error {
	return nil
}
