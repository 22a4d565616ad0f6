// Package task provides structured submission of asynchronous work
// whose outcome lands back in observable cells.
//
// A Runner replaces fire-and-forget goroutines spawned from UI code:
// the work function runs off-loop, and every state transition (phase,
// result, error, and the registered callbacks) is delivered through an
// explicitly injected Dispatcher, so completion ordering is visible in
// one place instead of implicit in the host's lifecycle.
//
//	loop := task.NewLoop(0)
//	defer loop.Close()
//
//	save := task.NewRunner(loop, func(ctx context.Context, p Profile) (Profile, error) {
//	    return api.SaveProfile(ctx, p)
//	}, task.CancelLatest(), task.WithName("profile:save"))
//
//	save.Phase().Watch(func(p task.Phase) { render(p) })
//	save.Submit(context.Background(), profile)
//
// Concurrency under repeated Submit calls is an explicit policy:
// CancelLatest (default), DropWhileRunning, or Queue.
package task
