package ports

import (
	"context"

	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/unify"
)

// Simulation is the query surface the inspection layer needs from a running
// discrete-event simulation.
type Simulation interface {
	// Now returns the current simulated time.
	Now() domain.SimTime

	// Entities lists every entity of the simulation, ordered.
	Entities() []domain.EntityPath

	// Attributes lists the flat attributes of one entity, computed on demand.
	// Returns domain.ErrEntityNotFound if the entity does not exist.
	Attributes(path domain.EntityPath) ([]unify.Attribute, error)

	// CurrentEntity returns the entity whose logic is executing right now.
	// It is only meaningful on the stepping goroutine while that logic runs;
	// log attribution relies on the context stamped with logcapture.WithEntity
	// instead.
	CurrentEntity() (domain.EntityPath, bool)
}

// Stepper dispatches simulation events.
type Stepper interface {
	// Step dispatches the next event. It returns false when no event is left.
	Step(ctx context.Context) (bool, error)

	// Remaining returns the number of pending events.
	Remaining() int
}
