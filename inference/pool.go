package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Infer once the pool has been closed.
var ErrPoolClosed = errors.New("inference: pool is closed")

// runner is one model instance. *Session is the production runner.
type runner interface {
	Infer(ctx context.Context, inputIDs []int64) (Logits, error)
	Close() error
}

// Pool spreads inference over a fixed set of model sessions. A caller
// blocks until a session is free or its context ends.
//
// Pool is safe for concurrent use.
type Pool struct {
	idle chan runner
	size int

	mu     sync.Mutex
	closed bool

	calls atomic.Int64
	waits atomic.Int64
}

// NewPool loads size sessions of the model at modelPath. A size of zero or
// less means one session.
func NewPool(modelPath string, size int) (*Pool, error) {
	return newPool(size, func() (runner, error) {
		return NewSession(modelPath)
	})
}

func newPool(size int, open func() (runner, error)) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	p := &Pool{idle: make(chan runner, size), size: size}

	// Load everything up front so a bad model fails here, not mid-run.
	for i := 0; i < size; i++ {
		r, err := open()
		if err != nil {
			_ = p.Close() // Best-effort cleanup; original error takes precedence
			return nil, fmt.Errorf("creating session %d: %w", i, err)
		}
		p.idle <- r
	}
	return p, nil
}

// Infer runs one grapheme id sequence on the next free session.
func (p *Pool) Infer(ctx context.Context, inputIDs []int64) (Logits, error) {
	r, err := p.acquire(ctx)
	if err != nil {
		return Logits{}, err
	}
	defer p.release(r)

	p.calls.Add(1)
	return r.Infer(ctx, inputIDs)
}

func (p *Pool) acquire(ctx context.Context) (runner, error) {
	// Fast path: a session is idle.
	select {
	case r, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	default:
	}

	p.waits.Add(1)
	select {
	case r, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) release(r runner) {
	// The lock is held across the send so Close cannot close idle under it.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = r.Close() // Pool closed while the session was out
		return
	}
	select {
	case p.idle <- r:
	default:
		_ = r.Close()
	}
}

// Close releases the idle sessions. Sessions still running are closed when
// their inference returns.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	p.mu.Unlock()

	var errs []error
	for r := range p.idle {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of sessions.
func (p *Pool) Size() int {
	return p.size
}

// Calls returns the number of inferences started.
func (p *Pool) Calls() int64 {
	return p.calls.Load()
}

// Waits returns how many inferences found no idle session and had to queue.
func (p *Pool) Waits() int64 {
	return p.waits.Load()
}
