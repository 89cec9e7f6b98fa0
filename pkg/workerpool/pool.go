// Package workerpool provides a fixed-size worker pool used to score
// candidate networks of one generation in parallel.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Common errors
var (
	ErrPoolClosed   = errors.New("workerpool: pool is closed")
	ErrPoolRunning  = errors.New("workerpool: pool is already running")
	ErrInvalidSize  = errors.New("workerpool: invalid pool size")
	ErrTaskPanic    = errors.New("workerpool: task panicked")
	ErrTaskCanceled = errors.New("workerpool: task canceled")
)

// Task represents a unit of work to be executed by the pool
type Task func(ctx context.Context) error

// Config holds worker pool configuration
type Config struct {
	// Size is the number of workers in the pool
	Size int
	// QueueSize is the task queue buffer size (0 = unbuffered)
	QueueSize int
}

// DefaultConfig returns the pool shape used when the run configuration does not override it
func DefaultConfig() Config {
	return Config{
		Size:      4,
		QueueSize: 256,
	}
}

// Pool runs submitted tasks on a fixed set of workers
type Pool struct {
	config  Config
	tasks   chan taskWrapper
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running atomic.Bool
	closed  atomic.Bool
	taskCnt atomic.Int64
	errCnt  atomic.Int64
}

type taskWrapper struct {
	task   Task
	result chan error
	ctx    context.Context
}

// New creates a new worker pool with the given configuration
func New(config Config) (*Pool, error) {
	if config.Size <= 0 || config.QueueSize < 0 {
		return nil, ErrInvalidSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config: config,
		tasks:  make(chan taskWrapper, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start starts the workers
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}
	if p.running.Load() {
		return ErrPoolRunning
	}

	for i := 0; i < p.config.Size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.running.Store(true)
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case wrapper, ok := <-p.tasks:
			if !ok {
				return
			}
			wrapper.result <- p.execute(wrapper)
		}
	}
}

// execute runs one task, turning a panic into ErrTaskPanic
func (p *Pool) execute(wrapper taskWrapper) (err error) {
	p.taskCnt.Add(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
		if err != nil {
			p.errCnt.Add(1)
		}
	}()

	if wrapper.ctx.Err() != nil {
		return ErrTaskCanceled
	}
	return wrapper.task(wrapper.ctx)
}

// Submit queues a task and returns a channel receiving its error
func (p *Pool) Submit(ctx context.Context, task Task) (<-chan error, error) {
	// the read lock keeps Close from closing the queue mid-send
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() || p.closed.Load() {
		return nil, ErrPoolClosed
	}

	result := make(chan error, 1)
	select {
	case p.tasks <- taskWrapper{task: task, result: result, ctx: ctx}:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrPoolClosed
	}
}

// SubmitWait submits a task and waits for it to finish
func (p *Pool) SubmitWait(ctx context.Context, task Task) error {
	result, err := p.Submit(ctx, task)
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ForEach runs fn(i) for i in [0, n) on the pool and waits for all of them.
// Every index is attempted; the returned error joins the individual failures.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	results := make([]<-chan error, n)
	var errs []error

	for i := 0; i < n; i++ {
		ch, err := p.Submit(ctx, func(ctx context.Context) error { return fn(ctx, i) })
		if err != nil {
			errs = append(errs, fmt.Errorf("task %d: %w", i, err))
			continue
		}
		results[i] = ch
	}

	for i, ch := range results {
		if ch == nil {
			continue
		}
		if err := <-ch; err != nil {
			errs = append(errs, fmt.Errorf("task %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close stops accepting tasks, drains the queue and waits for the workers
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Swap(true) {
		return nil
	}
	p.running.Store(false)
	close(p.tasks)
	p.wg.Wait()
	p.cancel()
	return nil
}

// Stats holds pool statistics
type Stats struct {
	Workers       int
	TasksExecuted int64
	TasksFailed   int64
	QueueSize     int
	IsRunning     bool
	IsClosed      bool
}

// Stats returns current pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:       p.config.Size,
		TasksExecuted: p.taskCnt.Load(),
		TasksFailed:   p.errCnt.Load(),
		QueueSize:     len(p.tasks),
		IsRunning:     p.running.Load(),
		IsClosed:      p.closed.Load(),
	}
}
