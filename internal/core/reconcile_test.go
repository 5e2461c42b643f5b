package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tlc-project/tlc-core/internal/config"
)

func TestReconcileAppliesRequestsAndExitsOnCancel(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	requests := make(chan Request)

	errc := make(chan error, 1)
	go func() { errc <- Reconcile(ctx, gs, requests) }()

	reply := make(chan WriteResult, 1)
	requests <- SetNameRequest{Name: "exp1", Reply: reply}
	res := <-reply
	require.NoError(t, res.Err)
	require.Equal(t, "exp1", res.Setting.Name)

	cancel()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Reconcile did not return after context cancellation")
	}
}

func TestReconcileRejectsInvalidWriteWithoutStoppingTheLoop(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	requests := make(chan Request)
	go Reconcile(ctx, gs, requests)

	badReply := make(chan WriteResult, 1)
	requests <- SetNameRequest{Name: "", Reply: badReply}
	require.Error(t, (<-badReply).Err)

	goodReply := make(chan WriteResult, 1)
	requests <- SetNameRequest{Name: "exp2", Reply: goodReply}
	res := <-goodReply
	require.NoError(t, res.Err)
	require.Equal(t, "exp2", res.Setting.Name)
}
