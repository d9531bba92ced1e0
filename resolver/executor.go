package resolver

import "sync"

// Executor runs a unit of work, asynchronously from the caller. It is the
// seam SendAsync uses instead of an ad hoc "go func(){}()" per call.
type Executor interface {
	Execute(fn func())
}

// DefaultExecutor is a bounded worker pool: at most Size tasks run
// concurrently, the rest queue. It generalizes the teacher's goroutine-
// per-call pattern (e.g. "go z.dnsKeys(ctx)") into something with a
// concrete, boundable concurrency limit.
type DefaultExecutor struct {
	tasks chan func()
	once  sync.Once
}

func NewDefaultExecutor(size int) *DefaultExecutor {
	if size <= 0 {
		size = DefaultExecutorPoolSize
	}
	e := &DefaultExecutor{tasks: make(chan func())}
	for i := 0; i < size; i++ {
		go e.worker()
	}
	return e
}

func (e *DefaultExecutor) worker() {
	for fn := range e.tasks {
		fn()
	}
}

func (e *DefaultExecutor) Execute(fn func()) {
	e.tasks <- fn
}

// Close shuts down the worker pool. Safe to call multiple times.
func (e *DefaultExecutor) Close() {
	e.once.Do(func() { close(e.tasks) })
}
