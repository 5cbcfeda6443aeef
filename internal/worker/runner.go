// Package worker runs card detection off the caller's goroutine. Detection
// over a large photograph is CPU-bound; the UI submits requests here and
// consumes results from a channel. The detection core itself stays
// synchronous and stateless.
//
// Requests follow last-call-wins: a newer submission supersedes every
// older one, and superseded outcomes are dropped rather than delivered.
// No cancellation reaches into a running detection; each run is a
// bounded, pure computation, so dropping the stale result is enough.
package worker

import (
	"image"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"card-tracer/internal/detect"
)

// DetectFunc is the detection entry point the runner invokes. Usually
// detect.DetectFromImage; tests substitute their own.
type DetectFunc func(img image.Image, params detect.Params) (*detect.Result, error)

// Outcome is one completed, non-superseded detection.
type Outcome struct {
	Seq    uint64
	Result *detect.Result
	Err    error
}

// Runner executes detection requests with bounded concurrency.
type Runner struct {
	detect  DetectFunc
	sem     chan struct{}
	results chan Outcome

	seq    atomic.Uint64
	latest atomic.Uint64
	wg     sync.WaitGroup
}

// NewRunner creates a runner sized from the machine's CPU and available
// memory.
func NewRunner(fn DetectFunc) *Runner {
	return NewRunnerWithConcurrency(fn, workerCount())
}

// NewRunnerWithConcurrency creates a runner with an explicit concurrency
// limit.
func NewRunnerWithConcurrency(fn DetectFunc, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		detect:  fn,
		sem:     make(chan struct{}, concurrency),
		results: make(chan Outcome, concurrency+1),
	}
}

// Submit queues a detection request and returns its sequence number. The
// request supersedes all earlier ones immediately.
func (r *Runner) Submit(img image.Image, params detect.Params) uint64 {
	seq := r.seq.Add(1)
	r.latest.Store(seq)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		// Superseded while queued: skip the work entirely
		if r.latest.Load() != seq {
			return
		}

		result, err := r.detect(img, params)

		// Superseded while running: drop the stale result
		if r.latest.Load() != seq {
			return
		}
		r.results <- Outcome{Seq: seq, Result: result, Err: err}
	}()
	return seq
}

// Results delivers completed outcomes. Only the newest request's outcome
// is guaranteed to arrive; superseded ones are dropped.
func (r *Runner) Results() <-chan Outcome {
	return r.results
}

// Close waits for in-flight work and closes the results channel.
func (r *Runner) Close() {
	r.wg.Wait()
	close(r.results)
}

// workerCount sizes concurrency from the machine: logical CPUs minus one
// (the caller keeps a core), further capped by available memory since a
// detection run holds several full-size image copies.
func workerCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	if n > 1 {
		n--
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		// ~512MB per concurrent detection of a large photograph
		byMem := int(vm.Available / (512 << 20))
		if byMem < 1 {
			byMem = 1
		}
		if byMem < n {
			n = byMem
		}
	}
	return n
}
