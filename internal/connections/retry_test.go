package connections

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/infrademo/infrademo/pkg/logger"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func stubSleep(t *testing.T) *sleepRecorder {
	t.Helper()
	rec := &sleepRecorder{}
	orig := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		rec.mu.Lock()
		rec.delays = append(rec.delays, d)
		rec.mu.Unlock()
		return nil
	}
	t.Cleanup(func() { sleep = orig })
	return rec
}

func TestWithRetrySucceedsWithoutSleeping(t *testing.T) {
	rec := stubSleep(t)

	calls := 0
	err := withRetry(context.Background(), logger.NewNop(), DefaultRetryPolicy, "test", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if len(rec.recorded()) != 0 {
		t.Fatalf("expected no sleeps, got %v", rec.recorded())
	}
}

func TestWithRetryBacksOffThenSucceeds(t *testing.T) {
	rec := stubSleep(t)

	calls := 0
	err := withRetry(context.Background(), logger.NewNop(), DefaultRetryPolicy, "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if got := rec.recorded(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected delays %v, got %v", want, got)
	}
}

func TestWithRetryExhaustsWithFullSchedule(t *testing.T) {
	rec := stubSleep(t)

	calls := 0
	lastErr := errors.New("still down")
	err := withRetry(context.Background(), logger.NewNop(), DefaultRetryPolicy, "test", func() error {
		calls++
		return fmt.Errorf("attempt %d: %w", calls, lastErr)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected the last attempt's error, got %v", err)
	}
	if calls != DefaultRetryPolicy.MaxRetries+1 {
		t.Fatalf("expected %d calls, got %d", DefaultRetryPolicy.MaxRetries+1, calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if got := rec.recorded(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected delays %v, got %v", want, got)
	}
}

func TestWithRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, logger.NewNop(), DefaultRetryPolicy, "test", func() error {
		calls++
		return errors.New("refused")
	})
	if calls != 1 {
		t.Fatalf("expected a single attempt before the aborted backoff, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
