package worker

import (
	"context"
	"sync"

	"dynoquery/utils/logger"
)

// Task is one unit of background work. It must finish any I/O it started even when ctx
// is cancelled; its result is dropped if it was superseded meanwhile.
type Task func(ctx context.Context) (interface{}, error)

// Result is the outcome of a Task that was still current when it finished
type Result struct {
	Key        string
	Generation uint64
	Value      interface{}
	Err        error
}

// Runner runs tasks in exclusive groups. Submitting to a group cancels the task in flight
// for that group, and only the latest task of each group delivers a Result.
type Runner struct {
	mu          sync.Mutex
	generations map[string]uint64
	cancels     map[string]context.CancelFunc
	results     chan Result
	done        chan struct{}
	closed      bool
	wg          sync.WaitGroup
	logger      logger.Logger
}

// NewRunner creates a runner whose results channel holds up to buffer undelivered results
func NewRunner(buffer int, log logger.Logger) *Runner {
	return &Runner{
		generations: make(map[string]uint64),
		cancels:     make(map[string]context.CancelFunc),
		results:     make(chan Result, buffer),
		done:        make(chan struct{}),
		logger:      log,
	}
}

// GroupKey names the exclusive group of one operation within a session
func GroupKey(sessionID, operation string) string {
	return sessionID + "/" + operation
}

// Submit starts task in group key, superseding whatever that group was running, and
// returns the generation assigned to it. After Close it returns 0 and runs nothing.
func (r *Runner) Submit(ctx context.Context, key string, task Task) uint64 {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}
	if cancel, ok := r.cancels[key]; ok {
		cancel()
		r.logger.Debugf("Superseding task %s generation %d", key, r.generations[key])
	}
	r.generations[key]++
	gen := r.generations[key]
	taskCtx, cancel := context.WithCancel(ctx)
	r.cancels[key] = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		value, err := task(taskCtx)
		r.deliver(Result{Key: key, Generation: gen, Value: value, Err: err}, cancel)
	}()
	return gen
}

func (r *Runner) deliver(res Result, cancel context.CancelFunc) {
	r.mu.Lock()
	current := !r.closed && r.generations[res.Key] == res.Generation
	if current {
		delete(r.cancels, res.Key)
	}
	r.mu.Unlock()
	cancel()

	if !current {
		r.logger.Debugf("Discarding stale result of %s generation %d", res.Key, res.Generation)
		return
	}
	select {
	case r.results <- res:
	case <-r.done:
	}
}

// Cancel supersedes the task in flight for key, if any, without starting another
func (r *Runner) Cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[key]; ok {
		cancel()
		delete(r.cancels, key)
		r.generations[key]++
	}
}

// IsCurrent reports whether gen is still the latest generation of key
func (r *Runner) IsCurrent(key string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[key] == gen
}

// InFlight reports whether key has a task running
func (r *Runner) InFlight(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[key]
	return ok
}

// Results is the single-consumer channel of current results
func (r *Runner) Results() <-chan Result {
	return r.results
}

// Close cancels every task, waits for them to finish and closes the results channel
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for key, cancel := range r.cancels {
		cancel()
		delete(r.cancels, key)
	}
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	close(r.results)
}
