// Package kit is the transport-agnostic action layer. Every API action
// (search, list categories, notifications) is an Endpoint; HTTP handlers
// and MCP tools decode their own wire formats and dispatch to the same
// Endpoint, so business behavior never forks per transport.
package kit

import "context"

// Endpoint is one transport-agnostic action function.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Middleware wraps an Endpoint with cross-cutting concerns (logging, audit).
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first is outermost.
// Chain(a, b, c)(endpoint) == a(b(c(endpoint)))
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}
