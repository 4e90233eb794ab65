package model

import (
	"context"
	"fmt"

	"github.com/chronosynth/chronosynth/core"
)

// BudgetedInvoker decorates an Invoker with a per-run call budget. Each
// Invoke spends one unit before reaching the wrapped invoker; once the
// budget is exhausted the call is rejected locally without touching the
// provider.
type BudgetedInvoker struct {
	inner  Invoker
	budget *core.CallBudget
}

// WithBudget wraps inner so every invocation is charged against budget.
func WithBudget(inner Invoker, budget *core.CallBudget) *BudgetedInvoker {
	return &BudgetedInvoker{inner: inner, budget: budget}
}

// Invoke implements Invoker.
func (b *BudgetedInvoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := b.budget.Spend(); err != nil {
		return nil, fmt.Errorf("model call rejected: %w", err)
	}

	return b.inner.Invoke(ctx, req)
}

// Info implements Invoker by delegating to the wrapped invoker.
func (b *BudgetedInvoker) Info() Info {
	return b.inner.Info()
}
