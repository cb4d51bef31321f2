/*
Package runner drives the simulation one event at a time for interactive
inspection.

A Controller owns the stepping budget: a nil limit runs free, zero stops and a
positive limit dispatches that many more events. Each Tick dispatches at most
PerTick events and, after every single event, lets the observer refresh
snapshots and evaluate breakpoints. Halting on a breakpoint is an opt-in
policy that sets the limit to zero.

# Usage

	ctrl := runner.NewController(sim,
		runner.WithObserver(inspector),
		runner.WithPerTick(10),
		runner.WithHaltOnBreakpoint(true),
	)
	ctrl.Start()

	if err := ctrl.Run(ctx, 50*time.Millisecond); err != nil {
		log.Fatal(err)
	}
*/
package runner
