/*
Package observability exposes Prometheus metrics about the inspection layer itself:
captured and dropped log events, breakpoint triggers, snapshot refreshes, the number
of watched entities and whether log capture is degraded.

A nil *Metrics is valid and records nothing, so components can take metrics as an
optional dependency.
*/
package observability
