/*
Package ports defines the driven ports (interfaces) of the simscope inspection layer.

These interfaces decouple the inspection core from the simulation engine and from
export backends.

# Key Interfaces

  - Simulation: the narrow query surface of the running simulation (time, attributes, current entity).
  - Stepper: dispatches simulation events one at a time for the stepping controller.
  - LogExporter / LogLoader: write and re-read one entity's captured log stream.
*/
package ports
