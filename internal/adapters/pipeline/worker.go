package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/nuray/setpoint/internal/domain/model"
	"github.com/nuray/setpoint/pkg/logger"
	"github.com/nuray/setpoint/pkg/metrics"
)

// Processor transforms one record. Implementations must be safe for
// concurrent use; reference pools are read-only during a pass.
type Processor interface {
	Process(ctx context.Context, rec model.Record) (model.Record, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, rec model.Record) (model.Record, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, rec model.Record) (model.Record, error) {
	return f(ctx, rec)
}

// Result is the outcome of processing one record. Err is set when the
// processor failed; Record then holds the unprocessed input.
type Result struct {
	Record model.Record
	Err    error
}

// Pool runs a fixed number of workers that drain a queue through a
// Processor and emit Results. The results channel is closed once the
// queue is closed and every worker has finished.
type Pool struct {
	queue     Queue
	processor Processor
	count     int
	results   chan Result
	logger    logger.Logger

	wg sync.WaitGroup
}

// NewPool creates a worker pool with configuration options.
func NewPool(workerCount int, queue Queue, processor Processor, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		queue:     queue,
		processor: processor,
		count:     workerCount,
		results:   make(chan Result, workerCount),
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Nop()
	}

	return p
}

// Start launches the workers. Results must be drained by the caller;
// the channel is closed when all workers have exited.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerActive(p.count)

	in := p.queue.Dequeue(ctx)
	p.wg.Add(p.count)
	for i := 0; i < p.count; i++ {
		go p.run(ctx, in)
	}

	go func() {
		p.wg.Wait()
		metrics.UpdateWorkerActive(0)
		close(p.results)
	}()
}

// Results returns the channel processed records arrive on.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// run is one worker loop.
func (p *Pool) run(ctx context.Context, in <-chan model.Record) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-in:
			if !ok {
				return
			}

			start := time.Now()
			out, err := p.processor.Process(ctx, rec)
			metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))

			if err != nil {
				p.logger.Error(ctx, "record processing failed",
					logger.String("key", rec.Key),
					logger.Error(err),
				)
				out = rec
			}

			select {
			case p.results <- Result{Record: out, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}
