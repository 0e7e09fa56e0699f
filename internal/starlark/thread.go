package starlark

import (
	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds the work of a single predicate call.
const DefaultMaxSteps = 100_000

// ThreadPool recycles Starlark threads between predicate calls. Idle threads
// sit in a buffered channel; when it is full, returned threads are dropped.
type ThreadPool struct {
	idle     chan *starlark.Thread
	maxSteps uint64
}

// NewThreadPool creates a pool holding at most size idle threads.
func NewThreadPool(size int) *ThreadPool {
	if size <= 0 {
		size = 16
	}
	return &ThreadPool{
		idle:     make(chan *starlark.Thread, size),
		maxSteps: DefaultMaxSteps,
	}
}

// Get returns an idle thread or a new one, named for error messages.
// Steps accumulate over a thread's life, so the budget is re-armed relative
// to the steps already taken.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	var thread *starlark.Thread
	select {
	case thread = <-p.idle:
	default:
		thread = &starlark.Thread{
			Print: func(*starlark.Thread, string) {}, // predicates have no output
		}
	}
	thread.Name = name
	thread.Uncancel()
	thread.SetMaxExecutionSteps(thread.ExecutionSteps() + p.maxSteps)
	return thread
}

// Put hands a thread back to the pool.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	thread.Name = ""
	select {
	case p.idle <- thread:
	default:
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	return len(p.idle)
}
