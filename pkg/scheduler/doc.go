// Package scheduler provides a cancellable delay-then-run primitive.
//
// Components that wait between steps take a Scheduler instead of calling
// time.AfterFunc directly. Production code uses Real; tests use Manual,
// a simulated clock whose Advance method fires due callbacks synchronously,
// so multi-step timing can be asserted without wall-clock sleeps:
//
//	clock := scheduler.NewManual(time.Unix(0, 0))
//	clock.AfterFunc(5*time.Second, poll)
//	clock.Advance(5 * time.Second) // poll has run when Advance returns
package scheduler
