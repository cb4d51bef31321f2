/*
Package simscope is a live inspection layer for discrete-event simulations.

It watches the mutable state of simulation entities while the simulation runs:
flat attributes are unified into one value tree per entity, fields are
addressed by dotted path, breakpoints fire on value transitions and every log
record is correlated with the entity and span chain that produced it.

# Concept

The simulation engine stays outside. simscope only needs the narrow
ports.Simulation surface: the simulated time, the entity list, the flat
attributes of one entity and the entity currently executing. Everything else
(snapshots, breakpoints, traces, log streams) lives in the Inspector.

# Usage

	sim := memory.NewSim()
	// ... add nodes and schedule events ...

	insp := simscope.New(sim)
	logcapture.Install(insp.Capture())

	_ = insp.Open("net.ping")
	_, _ = insp.ToggleBreakpoint("net.ping", "counter")

	ctrl := runner.NewController(sim, runner.WithObserver(insp), runner.WithHaltOnBreakpoint(true))
	ctrl.Start()
	status, err := ctrl.RunToCompletion(ctx)

	for _, e := range insp.Logs("net.ping", "PONG") {
		fmt.Println(e.Time, e.Span, e.Fields)
	}
*/
package simscope
