// Package middleware wraps log archives to transform streams on their way to
// and from durable storage.
package middleware

import "github.com/aretw0/simscope/pkg/ports"

// Middleware allows wrapping a LogArchive to add behavior.
type Middleware func(ports.LogArchive) ports.LogArchive

// Chain applies middlewares so the first one sees events first on Export.
func Chain(archive ports.LogArchive, mws ...Middleware) ports.LogArchive {
	for i := len(mws) - 1; i >= 0; i-- {
		archive = mws[i](archive)
	}
	return archive
}
