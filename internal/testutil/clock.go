package testutil

import (
	"fmt"
	"sync"
	"time"
)

// RunStart is the first reading of RunClock.
var RunStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// StepClock advances by a fixed step on every reading, so journaled runs have
// a positive duration and outcome timestamps strictly increase. Safe for
// concurrent use.
type StepClock struct {
	mu    sync.Mutex
	next  time.Time
	step  time.Duration
	reads int
}

// NewStepClock returns a clock whose first reading is start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{next: start, step: step}
}

// RunClock starts at RunStart and ticks one second per reading.
func RunClock() *StepClock {
	return NewStepClock(RunStart, time.Second)
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	c.reads++
	return now
}

// Reads returns how many times Now has been called.
func (c *StepClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// QueuedIDs hands out the queued IDs in order, then "run-N" where N counts
// every ID issued so far.
type QueuedIDs struct {
	mu     sync.Mutex
	queue  []string
	issued int
}

func NewQueuedIDs(ids ...string) *QueuedIDs {
	return &QueuedIDs{queue: ids}
}

func (g *QueuedIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	if len(g.queue) > 0 {
		id := g.queue[0]
		g.queue = g.queue[1:]
		return id
	}
	return fmt.Sprintf("run-%d", g.issued)
}
