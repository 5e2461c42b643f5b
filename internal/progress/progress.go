// Package progress implements the packed-atomic progress monitor used
// by every long-running stage executor (§4.10): a single int64 packs
// (total: high 32 bits, count: low 32 bits), and a dedicated negative
// sentinel signals cancellation to whatever loop is polling it.
package progress

import (
	"math"
	"sync/atomic"

	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// State is a snapshot of a Monitor's packed value.
type State struct {
	Uninitialized bool
	Finished      bool
	Total         uint32
	Count         uint32
}

// Monitor is a cheap, clonable-by-reference progress tracker for a
// single stage. The zero value is Uninitialized.
type Monitor struct {
	packed atomic.Int64
}

// Get returns the current snapshot.
func (m *Monitor) Get() State {
	return unpack(m.packed.Load())
}

// Cancel stores the cancellation sentinel. Any worker calling Start or
// Add afterwards observes the negative value and returns a
// CanceledError.
func (m *Monitor) Cancel() {
	m.packed.Store(math.MinInt64)
}

// Start resets the monitor to (total, 0). It returns a CanceledError
// if the monitor was canceled (and not yet restarted) when Start was
// called, mirroring the prior value's sign check.
func (m *Monitor) Start(total uint32) error {
	old := m.packed.Swap(int64(total) << 32)
	if old < 0 {
		return &tlcerrors.CanceledError{}
	}
	return nil
}

// Add advances count by n. It returns a CanceledError if the monitor
// was canceled since the last Start.
func (m *Monitor) Add(n uint32) error {
	old := m.packed.Add(int64(n)) - int64(n)
	if old < 0 {
		return &tlcerrors.CanceledError{}
	}
	return nil
}

func unpack(x int64) State {
	count := uint32(x)
	total := uint32(x >> 32)
	switch {
	case count == 0 && total == 0:
		return State{Uninitialized: true}
	case count == total:
		return State{Finished: true, Total: total, Count: count}
	default:
		return State{Total: total, Count: count}
	}
}
