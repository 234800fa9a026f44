package animation

import (
	"math"
	"time"
)

// A time limit that never expires.
const Unbounded uint32 = math.MaxUint32

// A Budget tracks the wall-clock time spent since a fixed start instant
// against a limit expressed in whole seconds.
type Budget struct {
	limit uint32
	start time.Time
	clock func() time.Time
}

// Create a budget of limitSeconds starting at start.
func NewBudget(limitSeconds uint32, start time.Time) *Budget {
	return &Budget{
		limit: limitSeconds,
		start: start,
		clock: time.Now,
	}
}

// Replace the time source.
func (b *Budget) WithClock(clock func() time.Time) *Budget {
	b.clock = clock
	return b
}

// Get the current time as seen by the budget.
func (b *Budget) Now() time.Time {
	return b.clock()
}

// Get the limit in seconds.
func (b *Budget) Limit() uint32 {
	return b.limit
}

// Returns true if the budget never expires.
func (b *Budget) IsUnbounded() bool {
	return b.limit == Unbounded
}

// Get the time elapsed since the start instant.
func (b *Budget) Elapsed() time.Duration {
	return b.clock().Sub(b.start)
}

// Returns true once the elapsed whole milliseconds are strictly greater than
// the limit.
func (b *Budget) Exceeded() bool {
	if b.IsUnbounded() {
		return false
	}
	return b.Elapsed().Milliseconds() > int64(b.limit)*1000
}
