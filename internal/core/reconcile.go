package core

import "context"

// Reconcile is the single-threaded event loop of §5: everything that
// touches GlobalState runs on this goroutine, so Request.handle and
// Outcome.apply never need their own locking. It drains requests,
// applies finished stage Outcomes, and after each event re-evaluates
// the DAG and dispatches whatever is newly ready, mirroring
// serialmux's Monitor(ctx) for-select shape.
//
// Reconcile returns when ctx is canceled. It is the caller's
// responsibility to stop feeding requests afterwards; any stage
// executor goroutines already in flight finish on their own and their
// Outcomes are simply never read.
func Reconcile(ctx context.Context, gs *GlobalState, requests <-chan Request) error {
	outcomes := make(chan Outcome)

	gs.dispatchReady(ctx, outcomes)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-requests:
			req.handle(gs)
			gs.dispatchReady(ctx, outcomes)

		case out := <-outcomes:
			out.apply(gs)
			gs.dispatchReady(ctx, outcomes)
		}
	}
}

// dispatchReady evaluates the DAG against the current Setting/Data and
// spawns an executor for every task it returns, registering each one
// before the spawn so a concurrent re-evaluation sees it as in flight
// immediately rather than racing the new goroutine's first line (§4.2
// "no automatic retry", §5).
func (gs *GlobalState) dispatchReady(ctx context.Context, outcomes chan<- Outcome) {
	for _, task := range gs.EvalTasks() {
		gs.Registry.Register(task.Kind(), task.Fingerprint())
		spawnExecuteTask(ctx, gs, task, outcomes)
	}
}
