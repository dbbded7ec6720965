// Package middleware provides the HTTP middleware chain for the write-API
// surface: panic recovery, request IDs, access logging, and the transport
// guard that decides whether proxy-asserted protocol headers are trusted
// before any security-header or handler logic runs.
package middleware
