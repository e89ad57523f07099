package inference

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeRunner returns a single-step result echoing the first input id.
type fakeRunner struct {
	delay  time.Duration
	closed atomic.Bool
	active *atomic.Int32
	peak   *atomic.Int32
}

func (f *fakeRunner) Infer(ctx context.Context, ids []int64) (Logits, error) {
	if f.closed.Load() {
		return Logits{}, ErrSessionClosed
	}
	if f.active != nil {
		n := f.active.Add(1)
		defer f.active.Add(-1)
		for {
			old := f.peak.Load()
			if n <= old || f.peak.CompareAndSwap(old, n) {
				break
			}
		}
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return Logits{}, ctx.Err()
	}
	return Logits{Steps: 1, Classes: 1, Data: []float32{float32(ids[0])}}, nil
}

func (f *fakeRunner) Close() error {
	f.closed.Store(true)
	return nil
}

func newFakePool(t *testing.T, size int, delay time.Duration) (*Pool, []*fakeRunner) {
	t.Helper()
	var runners []*fakeRunner
	var active, peak atomic.Int32
	pool, err := newPool(size, func() (runner, error) {
		r := &fakeRunner{delay: delay, active: &active, peak: &peak}
		runners = append(runners, r)
		return r, nil
	})
	if err != nil {
		t.Fatalf("newPool failed: %v", err)
	}
	return pool, runners
}

func TestNewPool_Size(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{3, 3},
	}
	for _, tt := range tests {
		pool, runners := newFakePool(t, tt.size, 0)
		if pool.Size() != tt.want || len(runners) != tt.want {
			t.Errorf("size %d: Size() = %d with %d runners, want %d", tt.size, pool.Size(), len(runners), tt.want)
		}
		_ = pool.Close()
	}
}

func TestNewPool_ModelNotFound(t *testing.T) {
	_, err := NewPool("../testdata/nonexistent.onnx", 2)
	if err == nil {
		t.Error("expected error for non-existent model file")
	}
}

func TestNewPool_OpenFailureClosesLoaded(t *testing.T) {
	boom := errors.New("boom")
	var opened []*fakeRunner
	_, err := newPool(3, func() (runner, error) {
		if len(opened) == 2 {
			return nil, boom
		}
		r := &fakeRunner{}
		opened = append(opened, r)
		return r, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	for i, r := range opened {
		if !r.closed.Load() {
			t.Errorf("session %d left open", i)
		}
	}
}

func TestPool_Infer(t *testing.T) {
	pool, _ := newFakePool(t, 2, 0)
	defer func() { _ = pool.Close() }()

	logits, err := pool.Infer(context.Background(), []int64{7, 1})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if logits.Steps != 1 || logits.Row(0)[0] != 7 {
		t.Errorf("Infer = %+v", logits)
	}
	if pool.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", pool.Calls())
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 3
	var active, peak atomic.Int32
	pool, err := newPool(size, func() (runner, error) {
		return &fakeRunner{delay: 2 * time.Millisecond, active: &active, peak: &peak}, nil
	})
	if err != nil {
		t.Fatalf("newPool failed: %v", err)
	}
	defer func() { _ = pool.Close() }()

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := pool.Infer(context.Background(), []int64{id}); err != nil {
					failures.Add(1)
				}
			}
		}(int64(i))
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("%d inferences failed", failures.Load())
	}
	if got := peak.Load(); got > size {
		t.Errorf("peak concurrency = %d, want <= %d", got, size)
	}
	if pool.Calls() != 50 {
		t.Errorf("Calls() = %d, want 50", pool.Calls())
	}
	if pool.Waits() == 0 {
		t.Error("expected some inferences to queue for a session")
	}
}

func TestPool_InferContextCancellation(t *testing.T) {
	pool, _ := newFakePool(t, 1, 200*time.Millisecond)
	defer func() { _ = pool.Close() }()

	// Occupy the only session.
	go func() { _, _ = pool.Infer(context.Background(), []int64{1}) }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := pool.Infer(ctx, []int64{2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestPool_Close(t *testing.T) {
	pool, runners := newFakePool(t, 2, 0)

	if err := pool.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	for i, r := range runners {
		if !r.closed.Load() {
			t.Errorf("session %d left open", i)
		}
	}

	_, err := pool.Infer(context.Background(), []int64{1})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_CloseWhileInferring(t *testing.T) {
	pool, runners := newFakePool(t, 1, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := pool.Infer(context.Background(), []int64{1})
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("in-flight Infer failed: %v", err)
	}
	if !runners[0].closed.Load() {
		t.Error("session returned after Close was not closed")
	}
}
