package guardrail

import (
	"sync"
	"testing"
	"time"
)

func TestQuotaCounterIncrement(t *testing.T) {
	q := NewQuotaCounter(500)

	for i := 1; i <= 5; i++ {
		if got := q.Increment(); got != i {
			t.Fatalf("Increment() = %d, want %d", got, i)
		}
	}

	if got := q.CountToday(); got != 5 {
		t.Errorf("CountToday() = %d, want 5", got)
	}
	if got := q.Remaining(); got != 495 {
		t.Errorf("Remaining() = %d, want 495", got)
	}
}

func TestQuotaCounterWithinLimit(t *testing.T) {
	q := NewQuotaCounter(2)

	if !q.WithinLimit() {
		t.Fatal("fresh counter should be within limit")
	}
	q.Increment()
	if !q.WithinLimit() {
		t.Fatal("1/2 should be within limit")
	}
	q.Increment()
	if q.WithinLimit() {
		t.Fatal("2/2 should be at the limit")
	}
	if got := q.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestQuotaCounterDayRollover(t *testing.T) {
	current := time.Date(2024, 3, 15, 23, 50, 0, 0, time.UTC)
	q := NewQuotaCounterWithClock(500, func() time.Time { return current })

	q.Increment()
	q.Increment()
	q.Increment()
	if got := q.CountToday(); got != 3 {
		t.Fatalf("CountToday() = %d, want 3", got)
	}

	// Cross midnight: the counter must lazily reset on the next access.
	current = time.Date(2024, 3, 16, 0, 5, 0, 0, time.UTC)

	if got := q.CountToday(); got != 0 {
		t.Errorf("CountToday() after rollover = %d, want 0", got)
	}
	if got := q.Increment(); got != 1 {
		t.Errorf("Increment() after rollover = %d, want 1", got)
	}
}

func TestQuotaCounterConcurrentIncrements(t *testing.T) {
	q := NewQuotaCounter(100000)

	var wg sync.WaitGroup
	for w := 0; w < 50; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				q.Increment()
			}
		}()
	}
	wg.Wait()

	if got := q.CountToday(); got != 1000 {
		t.Errorf("CountToday() = %d, want 1000", got)
	}
}

func TestQuotaCounterRemainingNeverNegative(t *testing.T) {
	q := NewQuotaCounter(1)
	q.Increment()
	q.Increment()
	if got := q.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}
