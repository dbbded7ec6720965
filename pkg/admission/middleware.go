package admission

import (
	"fmt"
	"net/http"

	"watchtower-hq/janus/pkg/server/respond"
)

// Middleware rejects every request with 503 while the controller's lag
// threshold is exceeded. onReject, if non-nil, is called once per
// rejection (used for metrics). The heartbeat endpoint must be mounted
// outside this middleware.
//
// Example usage:
//
//	handler = admission.Middleware(controller, nil)(handler)
func Middleware(c *Controller, onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Admit() {
				if onReject != nil {
					onReject()
				}
				retryAfter := c.interval.Seconds()
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter)))
				respond.Error(w, http.StatusServiceUnavailable,
					"server is overloaded, retry shortly")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
