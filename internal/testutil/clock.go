package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Epoch is the first instant a StepClock returns.
var Epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// StepClock is a deterministic time source that advances by a fixed step on
// every call.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepClock starts at Epoch and advances by step per call.
// A zero step returns Epoch forever, which simulates clock-resolution ties.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{next: Epoch, step: step}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

// Set moves the clock to t. Used to simulate the wall clock stepping back.
func (c *StepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = t
}

// SequenceIDs hands out "i1", "i2", ... in order.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu sync.Mutex
	n  int
}

// Next returns the next id in the sequence.
func (s *SequenceIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("i%d", s.n)
}

// FixedIDs returns predetermined ids in order and panics once exhausted,
// catching tests that create more items than they expect.
func FixedIDs(ids ...string) func() string {
	var (
		mu  sync.Mutex
		idx int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if idx >= len(ids) {
			panic("FixedIDs: all ids exhausted")
		}
		id := ids[idx]
		idx++
		return id
	}
}
