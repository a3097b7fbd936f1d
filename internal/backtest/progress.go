package backtest

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// progressLogInterval throttles progress output on large grids.
const progressLogInterval = 100

// progressReporter logs sweep progress with throughput and process memory,
// so long-running grids on small devices remain observable.
type progressReporter struct {
	total   int
	done    atomic.Int64
	started time.Time
	proc    *process.Process
	log     zerolog.Logger
}

func newProgressReporter(total int, log zerolog.Logger) *progressReporter {
	// Process handle is best effort; memory readings are skipped when it
	// cannot be obtained.
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &progressReporter{
		total:   total,
		started: time.Now(),
		proc:    proc,
		log:     log.With().Str("component", "sweep_progress").Logger(),
	}
}

// Done marks one combination complete, logging every progressLogInterval.
func (p *progressReporter) Done() {
	done := p.done.Add(1)
	if done%progressLogInterval != 0 {
		return
	}

	elapsed := time.Since(p.started).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(done) / elapsed
	}

	event := p.log.Info().
		Int64("done", done).
		Int("total", p.total).
		Float64("per_sec", rate)

	if p.proc != nil {
		if mem, err := p.proc.MemoryInfo(); err == nil {
			event = event.Uint64("rss_mb", mem.RSS/1024/1024)
		}
	}

	event.Msg("Sweep progress")
}

// Finish logs the final throughput summary.
func (p *progressReporter) Finish() {
	p.log.Info().
		Int64("done", p.done.Load()).
		Dur("elapsed", time.Since(p.started)).
		Msg("Sweep progress finished")
}
