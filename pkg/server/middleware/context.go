package middleware

// contextKey is a private type for context keys defined in this package.
type contextKey int

const (
	// RequestIDKey is the context key for the request ID.
	RequestIDKey contextKey = iota

	// StartTimeKey is the context key for the request start time.
	StartTimeKey

	// TrustedSecureKey is the context key for the transport guard's
	// trusted-secure decision.
	TrustedSecureKey
)
