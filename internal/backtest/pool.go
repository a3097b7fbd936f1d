package backtest

import (
	"runtime"
	"sync"
)

// workerPool runs independent grid cells in parallel. Every cell carries
// its own period slice and pre-computed z-scores, so workers share no
// mutable state; collecting results is the only synchronization point.
type workerPool struct {
	numWorkers int
}

// newWorkerPool creates a pool with the given number of workers, one per
// CPU when zero or negative.
func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &workerPool{numWorkers: numWorkers}
}

// cellJob is one grid cell awaiting evaluation.
type cellJob struct {
	index int
	row   SweepRow // keys and baseline columns pre-filled

	points         []SeriesPoint
	zscores        []float64
	initialCapital float64
}

// runAll evaluates every job and returns the rows in input order.
func (wp *workerPool) runAll(cells []cellJob, onDone func()) []SweepRow {
	numCells := len(cells)
	if numCells == 0 {
		return []SweepRow{}
	}

	jobs := make(chan cellJob, numCells)
	results := make(chan struct {
		index int
		row   SweepRow
	}, numCells)

	workers := wp.numWorkers
	if numCells < workers {
		workers = numCells
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				metrics, equity := runThresholds(job.points, job.zscores, job.row.BuyThreshold, job.row.SellThreshold, job.initialCapital)

				row := job.row
				row.ReturnPct = metrics.ReturnPct
				row.MaxDrawdownPct = metrics.MaxDrawdownPct
				row.Trades = metrics.Trades
				row.WinRate = metrics.WinRate
				row.ProfitFactor = metrics.ProfitFactor
				row.Calmar = metrics.Calmar
				row.OutperformancePct = metrics.ReturnPct - row.StaticReturnPct
				row.EquityCurve = equity

				results <- struct {
					index int
					row   SweepRow
				}{job.index, row}
			}
		}()
	}

	for _, cell := range cells {
		jobs <- cell
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	rows := make([]SweepRow, numCells)
	for res := range results {
		rows[res.index] = res.row
		if onDone != nil {
			onDone()
		}
	}

	return rows
}
