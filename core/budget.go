package core

import (
	"fmt"
	"sync"
)

// CallBudget caps the number of model invocations one run may perform. A
// full run spends at most four calls (three fan-out roles plus one
// integration call); a short-circuited integration spends none.
type CallBudget struct {
	max  int
	used int
	mu   sync.Mutex
}

// NewCallBudget creates a budget allowing max calls. If max == 0, the
// budget is unlimited.
func NewCallBudget(max int) *CallBudget {
	return &CallBudget{max: max}
}

// Spend consumes one call and returns an error once the cap is exceeded.
func (b *CallBudget) Spend() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.used++
	if b.max > 0 && b.used > b.max {
		return fmt.Errorf("model call budget exhausted: %d", b.max)
	}

	return nil
}

// Used returns the number of calls spent so far.
func (b *CallBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.used
}

// Remaining returns how many calls are left, or -1 when unlimited.
func (b *CallBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max == 0 {
		return -1
	}

	return b.max - b.used
}
