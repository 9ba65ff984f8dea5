// Package middleware wraps cache backends with extra behaviour, such as
// encryption at rest.
package middleware

import "github.com/aretw0/conduit/pkg/ports"

// Middleware allows wrapping a KVBackend to add behavior.
type Middleware func(ports.KVBackend) ports.KVBackend

// Chain applies mws to b so that the first middleware is the outermost.
func Chain(b ports.KVBackend, mws ...Middleware) ports.KVBackend {
	for i := len(mws) - 1; i >= 0; i-- {
		b = mws[i](b)
	}
	return b
}
