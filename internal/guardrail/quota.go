// quota.go - In-memory daily request counter

package guardrail

import (
	"sync"
	"time"
)

// QuotaCounter tracks how many provider requests were issued today.
// The count lives in process memory only: a restart resets it to zero and
// multiple instances each hold their own counter. Both are accepted
// limitations, not bugs.
//
// The reset is lazy - the stored date is compared against the current
// calendar date on every access, there is no timer.
type QuotaCounter struct {
	mu    sync.Mutex
	date  string // ISO date the count belongs to
	count int
	limit int
	now   func() time.Time
}

// NewQuotaCounter creates a counter with the given daily limit.
func NewQuotaCounter(limit int) *QuotaCounter {
	return &QuotaCounter{limit: limit, now: time.Now}
}

// NewQuotaCounterWithClock lets tests control the calendar date.
func NewQuotaCounterWithClock(limit int, now func() time.Time) *QuotaCounter {
	return &QuotaCounter{limit: limit, now: now}
}

// resetIfRolledOver must be called with the mutex held.
func (q *QuotaCounter) resetIfRolledOver() {
	today := q.now().Format("2006-01-02")
	if q.date != today {
		q.date = today
		q.count = 0
	}
}

// CountToday returns the number of requests issued today.
func (q *QuotaCounter) CountToday() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetIfRolledOver()
	return q.count
}

// Increment bumps the counter and returns the new value.
func (q *QuotaCounter) Increment() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetIfRolledOver()
	q.count++
	return q.count
}

// WithinLimit reports whether another request may be issued today.
func (q *QuotaCounter) WithinLimit() bool {
	return q.CountToday() < q.limit
}

// Limit returns the configured daily limit.
func (q *QuotaCounter) Limit() int {
	return q.limit
}

// Remaining returns how many requests are left today (never negative).
func (q *QuotaCounter) Remaining() int {
	remaining := q.limit - q.CountToday()
	if remaining < 0 {
		return 0
	}
	return remaining
}
