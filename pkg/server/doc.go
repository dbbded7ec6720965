// Package server wires the front door together and drives its lifecycle.
//
// Startup order: the store handle is opened by the caller and injected;
// the server wires the health gate, admission controller, transport
// guard, middleware chain and write-API handlers, subscribes the
// observation synchronizer, registers the shutdown coordinator, and only
// then binds the listener and transitions to Ready.
//
// Every inbound request on the write surface passes: admission control →
// request ID → access logging → transport guard → security headers →
// handler, with panic recovery outermost. The heartbeat and metrics
// endpoints are mounted outside that chain.
package server
