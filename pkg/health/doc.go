// Package health tracks store liveness and serves the heartbeat endpoint.
//
// A Gate probes the store on a fixed interval and keeps only the latest
// Snapshot; there is no history. The heartbeat handler is mounted outside
// the admission and access-logging middleware so orchestrator checks
// succeed even under load, while still reflecting true store health.
package health
