// Package scan fans probes out across addresses under a fixed concurrency
// bound and collects the outcomes into a shared result store.
package scan

import (
	"context"
	"fmt"
	"sync/atomic"

	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"

	"tcprank/pkg/types"
)

// AddressSource produces candidate addresses. Next returns false once the
// sequence is exhausted.
type AddressSource interface {
	Next() (types.Address, bool)
}

// Prober measures one address.
type Prober interface {
	Probe(ctx context.Context, addr types.Address) *types.ProbeResult
}

// Scheduler pulls addresses from a source and dispatches each to a bounded
// pool of probe workers. The pool is the only backpressure mechanism: the
// source is advanced only as slots free up, so in-flight sockets never exceed
// the bound and huge ranges never pile up in memory.
type Scheduler struct {
	prober      Prober
	concurrency int

	store     *mapsutil.SyncLockMap[types.Address, *types.ProbeResult]
	completed atomic.Uint64
}

func NewScheduler(prober Prober, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		prober:      prober,
		concurrency: concurrency,
		store:       mapsutil.NewSyncLockMap[types.Address, *types.ProbeResult](),
	}
}

// Run drains the source. It returns once the source is exhausted and every
// in-flight probe has completed, or once ctx is cancelled. Cancellation
// stops issuing new probes and lets in-flight ones wind down within a probe
// timeout. The store keeps whatever completed before cancellation.
func (s *Scheduler) Run(ctx context.Context, src AddressSource) error {
	awg, err := syncutil.New(syncutil.WithSize(s.concurrency))
	if err != nil {
		return fmt.Errorf("could not create worker pool: %w", err)
	}

	for ctx.Err() == nil {
		addr, ok := src.Next()
		if !ok {
			break
		}
		// each key is written by exactly one worker
		if s.store.Has(addr) {
			continue
		}

		// blocks until a slot frees; this is the concurrency bound
		awg.Add()
		go func(addr types.Address) {
			defer awg.Done()
			result := s.prober.Probe(ctx, addr)
			_ = s.store.Set(addr, result)
			s.completed.Add(1)
		}(addr)
	}

	awg.Wait()
	return ctx.Err()
}

// Completed reports how many addresses have finished probing. Monotonic,
// safe to read from any goroutine, never blocks the workers.
func (s *Scheduler) Completed() uint64 {
	return s.completed.Load()
}

// Results snapshots the store. Call after Run returns.
func (s *Scheduler) Results() []*types.ProbeResult {
	results := make([]*types.ProbeResult, 0, s.completed.Load())
	_ = s.store.Iterate(func(_ types.Address, r *types.ProbeResult) error {
		results = append(results, r)
		return nil
	})
	return results
}
