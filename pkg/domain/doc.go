/*
Package domain contains the core models of the simscope inspection layer.

It is kept free of I/O and of the simulation engine itself, following the
hexagonal layout of the rest of the module: adapters translate between these
types and the outside world.

# Key Entities

  - EntityPath: hierarchical, ordered identifier of one simulation entity.
  - SimTime: simulated time as reported by the simulation.
  - LogEvent: one captured log record, correlated with its owning entity and span chain.
  - ModuleLog: the append-only stream of LogEvents of one entity.
  - BreakpointKind: the value transition a breakpoint reacts to.
*/
package domain
