package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/engine"
)

// Collector gathers the source, parse flag and analyzer outcomes of one
// submission. Implementations must honor ctx cancellation.
type Collector interface {
	Collect(ctx context.Context, target Target) (engine.Submission, error)
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func(ctx context.Context, target Target) (engine.Submission, error)

// Collect calls f.
func (f CollectorFunc) Collect(ctx context.Context, target Target) (engine.Submission, error) {
	return f(ctx, target)
}

// Runner orchestrates batch processing: a Collector gathers each submission
// and the Engine turns it into an ordered, merged diagnostic list.
type Runner struct {
	// Collector gathers submissions.
	Collector Collector

	// Engine processes collected submissions.
	Engine *engine.Engine
}

// New creates a new Runner.
func New(collector Collector, eng *engine.Engine) *Runner {
	if eng == nil {
		eng = engine.New(nil)
	}
	return &Runner{Collector: collector, Engine: eng}
}

// Run discovers targets (unless opts.Targets is set) and processes them
// concurrently. It returns outcomes in target order and aggregate stats.
// Progress is logged to the logger attached to ctx, if any.
//
// The runner:
//   - Processes submissions concurrently using a worker pool
//   - Bounds each submission by opts.Timeout
//   - Records failed submissions without stopping the batch
//   - Respects context cancellation, returning the partial result
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	targets := opts.Targets
	if targets == nil {
		discovered, err := Discover(ctx, opts)
		if err != nil {
			return nil, err
		}
		targets = discovered
	}

	result := &Result{
		Submissions: make([]Outcome, 0, len(targets)),
		Stats:       newStats(),
	}
	result.Stats.Discovered = len(targets)

	if len(targets) == 0 {
		return result, nil
	}

	// Determine job count.
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than targets.
	if jobs > len(targets) {
		jobs = len(targets)
	}

	workCh := make(chan int)
	outCh := make(chan indexedOutcome)

	var wg sync.WaitGroup

	// Start workers.
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, targets, opts.Timeout)
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for idx := range targets {
			select {
			case <-ctx.Done():
				return
			case workCh <- idx:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order; index by target position.
	outcomes := make(map[int]Outcome, len(targets))
	for out := range outCh {
		outcomes[out.index] = out.outcome
	}

	// Build result in deterministic order.
	for idx := range targets {
		if outcome, ok := outcomes[idx]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

type indexedOutcome struct {
	index   int
	outcome Outcome
}

// worker processes targets from workCh and sends outcomes to outCh.
func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan int,
	outCh chan<- indexedOutcome,
	targets []Target,
	timeout time.Duration,
) {
	for idx := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.process(ctx, targets[idx], timeout)

		select {
		case <-ctx.Done():
			return
		case outCh <- indexedOutcome{index: idx, outcome: outcome}:
		}
	}
}

// process collects and analyzes one target within its time budget.
func (r *Runner) process(ctx context.Context, target Target, timeout time.Duration) Outcome {
	outcome := Outcome{Target: target}

	subCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		subCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	sub, err := r.Collector.Collect(subCtx, target)
	if err == nil && subCtx.Err() != nil {
		err = subCtx.Err()
	}
	if err != nil {
		outcome.Err = fmt.Errorf("collect %s: %w", target.ID, err)
		if logger := logging.Attached(ctx); logger != nil {
			logger.Warn("submission failed",
				logging.FieldSubmitter, target.ID,
				logging.FieldPath, target.Path,
				logging.FieldError, err)
		}
		return outcome
	}

	if sub.ID == "" {
		sub.ID = target.ID
	}
	outcome.Result = r.Engine.Process(sub)
	outcome.Source = sub.Source

	if logger := logging.Attached(ctx); logger != nil {
		logger.Debug("submission processed",
			logging.FieldSubmitter, target.ID,
			logging.FieldDiagnosticsTotal, len(outcome.Result.Diagnostics),
			logging.FieldDuration, time.Since(start))
	}

	return outcome
}
