package scanner

import (
	"context"
	"time"

	"arbitrage/internal/executor"
	"arbitrage/internal/logging"
	"arbitrage/internal/store"
	"arbitrage/pkg/retry"
)

const (
	persistenceWorkers  = 4
	persistenceQueueLen = 256
)

// persistJob is one executed pair's fills and resulting cumulative PnL,
// queued for background persistence.
type persistJob struct {
	symbol     string
	buyFill    executor.Fill
	sellFill   executor.Fill
	cumulative float64
}

// persistencePool dispatches fill and PnL writes onto a fixed set of
// worker goroutines reading off a bounded queue: a slow or failing
// database backs up the queue instead of spawning an unbounded goroutine
// per trade. Each write is retried under a conservative backoff before
// being logged and dropped.
type persistencePool struct {
	jobs     chan persistJob
	store    store.FillStore
	log      logging.Sink
	retryCfg retry.Config
}

// newPersistencePool starts workers goroutines draining a queue of depth
// queueLen. Submissions beyond that depth are dropped rather than
// blocking the caller.
func newPersistencePool(workers, queueLen int, st store.FillStore, log logging.Sink) *persistencePool {
	p := &persistencePool{
		jobs:     make(chan persistJob, queueLen),
		store:    st,
		log:      log,
		retryCfg: retry.ConservativeConfig(),
	}
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *persistencePool) run() {
	for job := range p.jobs {
		p.process(job)
	}
}

func (p *persistencePool) process(job persistJob) {
	ctx := context.Background()

	if err := retry.Do(ctx, func() error {
		return p.store.RecordFill(store.FillFromExecutor(job.symbol, job.buyFill))
	}, p.retryCfg); err != nil {
		p.log.Error("persist fill failed", logging.String("symbol", job.symbol), logging.Err(err))
	}

	if err := retry.Do(ctx, func() error {
		return p.store.RecordFill(store.FillFromExecutor(job.symbol, job.sellFill))
	}, p.retryCfg); err != nil {
		p.log.Error("persist fill failed", logging.String("symbol", job.symbol), logging.Err(err))
	}

	snap := store.PnLSnapshot{Symbol: job.symbol, CumulativeNetUsd: job.cumulative, RecordedAt: time.Now()}
	if err := retry.Do(ctx, func() error {
		return p.store.RecordPnL(snap)
	}, p.retryCfg); err != nil {
		p.log.Error("persist pnl failed", logging.String("symbol", job.symbol), logging.Err(err))
	}
}

// submit enqueues job. A full queue means persistence is falling behind
// the trading loop; the job is dropped and logged rather than blocking
// checkArbitrage.
func (p *persistencePool) submit(job persistJob) {
	select {
	case p.jobs <- job:
	default:
		p.log.Warn("persistence queue full, dropping write", logging.String("symbol", job.symbol))
	}
}
