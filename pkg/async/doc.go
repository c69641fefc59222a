// Package async provides small generic helpers for running computations
// concurrently and collecting their results.
//
// Async starts the supplied function in its own goroutine and returns a
// Future for its eventual result. The caller waits with Await, bounds the
// wait with AwaitWithTimeout, or polls with IsComplete. WaitAll awaits a
// whole batch, preserving order.
//
// The helpers are context-aware: a context cancelled before the function
// starts completes the Future with the context error instead of invoking
// the function.
//
// The push dispatcher uses one Future per endpoint to fan a notification
// out across a user's devices; the helpers are deliberately minimal and
// impose no concurrency limit of their own.
package async
