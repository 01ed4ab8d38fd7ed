// Package sysstats samples host CPU and RAM utilization for the timing
// panel. It is the local fallback; producers that report their own
// sys_stats take precedence inside the session store.
package sysstats

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ChanLumerico/torchlit/internal/session"
)

// DefaultInterval is how often the host is sampled.
const DefaultInterval = 2 * time.Second

// Run samples the host on a ticker and feeds readings to the store
// until ctx is cancelled. The first cpu.Percent call only primes the
// counters, so the first real reading lands one interval in. Run blocks
// and is meant to be launched as a goroutine.
func Run(ctx context.Context, interval time.Duration, store *session.Store) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	// Prime the CPU counters; subsequent calls measure the delta since
	// this one.
	cpu.PercentWithContext(ctx, 0, false)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sample(ctx, store)
		}
	}
}

func sample(ctx context.Context, store *session.Store) {
	var cpuPct, ramPct float64
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		ramPct = vm.UsedPercent
	}
	store.SetLocalSys(cpuPct, ramPct)
}
