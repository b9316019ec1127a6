package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTasks(t *testing.T) {
	wp := New(3, 4)
	defer wp.Close()

	var ran atomic.Int32
	results := make(chan Result, 10)
	for i := 0; i < 10; i++ {
		n := i
		err := wp.Submit(context.Background(), Task{
			Fn: func(context.Context) (any, error) {
				ran.Add(1)
				return n * 2, nil
			},
			ResultC: results,
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	sum := 0
	for i := 0; i < 10; i++ {
		select {
		case res := <-results:
			if res.Err != nil {
				t.Fatalf("unexpected task error: %v", res.Err)
			}
			sum += res.Value.(int)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for result %d", i)
		}
	}
	if sum != 90 {
		t.Fatalf("expected sum 90, got %d", sum)
	}
	if ran.Load() != 10 {
		t.Fatalf("expected 10 runs, got %d", ran.Load())
	}
}

func TestSubmitAfterClose(t *testing.T) {
	wp := New(1, 1)
	wp.Close()

	err := wp.Submit(context.Background(), Task{Fn: func(context.Context) (any, error) { return nil, nil }})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	select {
	case <-wp.Done():
	default:
		t.Fatalf("expected Done to be closed")
	}
}

func TestSubmitHonoursContext(t *testing.T) {
	wp := New(1, 0)
	defer wp.Close()

	block := make(chan struct{})
	defer close(block)
	started := make(chan struct{})
	if err := wp.Submit(context.Background(), Task{Fn: func(context.Context) (any, error) {
		close(started)
		<-block
		return nil, nil
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := wp.Submit(ctx, Task{Fn: func(context.Context) (any, error) { return nil, nil }})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
