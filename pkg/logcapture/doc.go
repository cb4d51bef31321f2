/*
Package logcapture correlates structured log records with the simulation.

Capture is a slog.Handler. For every record it stamps the simulated time, the
entity carried by the context (see WithEntity), the span chain carried by the
context and the formatted fields, then appends the event to that entity's
stream. Records are
also forwarded to an optional next handler, so capture can sit in front of the
usual stderr logger.

	capture := logcapture.New(sim, logcapture.WithNext(logging.NewHandler(os.Stderr, level)))
	logcapture.Install(capture)

	// inside entity logic, ctx was stamped with WithEntity by the simulation
	ctx = logcapture.StartSpan(ctx, "pinger", "state", 1)
	slog.InfoContext(ctx, "PONG")

Records whose context carries no entity, such as records logged without a
context or from another goroutine, are dropped unless KeepUnowned is set, in
which case they land in the stream of the zero EntityPath.

A panic inside the capture path never reaches the simulation: capture switches
to a degraded state, stops recording and keeps forwarding to the next handler.
*/
package logcapture
