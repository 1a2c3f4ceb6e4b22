package viewer

import "sync"

// Operation is deferred work run against a target on the frame thread.
// Operations that report Keep are run again on every pass; the others are
// removed after their first run.
type Operation[T any] interface {
	Run(target T)
	Keep() bool
}

// OperationFunc adapts a function to an Operation.
type OperationFunc[T any] struct {
	Name     string
	KeepFlag bool
	Fn       func(T)
}

// NewOperation returns an operation that calls fn.
func NewOperation[T any](name string, keep bool, fn func(T)) *OperationFunc[T] {
	return &OperationFunc[T]{Name: name, KeepFlag: keep, Fn: fn}
}

// Run calls the wrapped function.
func (o *OperationFunc[T]) Run(target T) {
	if o.Fn != nil {
		o.Fn(target)
	}
}

// Keep reports whether the operation stays queued after running.
func (o *OperationFunc[T]) Keep() bool { return o.KeepFlag }

// OperationQueue is a mutex-guarded list of operations. Add and Remove may
// be called from any goroutine; Run is called by the frame driver.
type OperationQueue[T any] struct {
	mu  sync.Mutex
	ops []Operation[T]
}

// Add appends op.
func (q *OperationQueue[T]) Add(op Operation[T]) {
	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.mu.Unlock()
}

// Remove drops every occurrence of op. Operations must be comparable
// (typically pointers).
func (q *OperationQueue[T]) Remove(op Operation[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.ops[:0]
	for _, o := range q.ops {
		if o != op {
			kept = append(kept, o)
		}
	}
	clear(q.ops[len(kept):])
	q.ops = kept
}

// Len returns the number of queued operations.
func (q *OperationQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Run executes the queued operations in order. One-shot operations are
// removed before they run; the lock is not held while an operation runs so
// operations may queue further work.
func (q *OperationQueue[T]) Run(target T) {
	q.mu.Lock()
	if len(q.ops) == 0 {
		q.mu.Unlock()
		return
	}
	batch := make([]Operation[T], len(q.ops))
	copy(batch, q.ops)
	kept := q.ops[:0]
	for _, o := range q.ops {
		if o.Keep() {
			kept = append(kept, o)
		}
	}
	clear(q.ops[len(kept):])
	q.ops = kept
	q.mu.Unlock()

	for _, o := range batch {
		o.Run(target)
	}
}
