package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

func TestResolveWorkers(t *testing.T) {
	tests := []struct {
		nJobs int
		want  int
	}{
		{1, 1},
		{4, 4},
		{0, 1},
		{-3, 1},
		{-1, runtime.NumCPU()},
	}
	for _, tt := range tests {
		if got := ResolveWorkers(tt.nJobs); got != tt.want {
			t.Errorf("ResolveWorkers(%d) = %d, want %d", tt.nJobs, got, tt.want)
		}
	}
}

func TestParallelizeCoversAllItems(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		seen := make([]int32, 10)
		Parallelize(10, workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Errorf("workers=%d: item %d visited %d times", workers, i, c)
			}
		}
	}
}

func TestForEachWritesPrivateSlots(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		out := make([]int, 25)
		err := ForEach(context.Background(), len(out), workers, func(i int) error {
			out[i] = i * i
			return nil
		})
		if err != nil {
			t.Fatalf("workers=%d: unexpected error %v", workers, err)
		}
		for i, v := range out {
			if v != i*i {
				t.Errorf("workers=%d: out[%d] = %d", workers, i, v)
			}
		}
	}
}

func TestForEachReturnsLowestIndexError(t *testing.T) {
	err := ForEach(context.Background(), 6, 1, func(i int) error {
		if i >= 2 {
			return fmt.Errorf("task %d failed", i)
		}
		return nil
	})
	if err == nil || err.Error() != "task 2 failed" {
		t.Errorf("expected task 2 error, got %v", err)
	}
}

func TestForEachRecoversPanic(t *testing.T) {
	err := ForEach(context.Background(), 4, 2, func(i int) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	})
	var panicErr *errors.PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %v", err)
	}
}

func TestForEachHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := ForEach(ctx, 5, 1, func(i int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if calls != 0 {
		t.Errorf("expected no calls after cancellation, got %d", calls)
	}
}
