package model

import (
	"context"
	"testing"

	"github.com/chronosynth/chronosynth/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetedInvokerRejectsOverspend(t *testing.T) {
	mock := NewMockInvoker()
	inv := WithBudget(mock, core.NewCallBudget(2))
	ctx := context.Background()

	_, err := inv.Invoke(ctx, Request{Role: core.RolePast, Prompt: "one"})
	require.NoError(t, err)
	_, err = inv.Invoke(ctx, Request{Role: core.RolePresent, Prompt: "two"})
	require.NoError(t, err)

	_, err = inv.Invoke(ctx, Request{Role: core.RoleFuture, Prompt: "three"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget exhausted")
	assert.Len(t, mock.Calls(), 2)
}

func TestBudgetedInvokerUnlimited(t *testing.T) {
	mock := NewMockInvoker()
	inv := WithBudget(mock, core.NewCallBudget(0))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := inv.Invoke(ctx, Request{Role: core.RolePast, Prompt: "p"})
		require.NoError(t, err)
	}

	assert.Equal(t, "mock-model", inv.Info().Name)
	assert.Len(t, mock.Calls(), 5)
}
