package health

import (
	"net/http"

	"watchtower-hq/janus/pkg/server/respond"
)

// Path is the fixed, unauthenticated heartbeat path. The server mounts
// this handler outside the admission and access-logging middleware.
const Path = "/healthz"

// heartbeatBody is the heartbeat response. Status is "ok" or "unhealthy".
type heartbeatBody struct {
	Status    string `json:"status"`
	CheckedAt string `json:"checked_at"`
	Error     string `json:"error,omitempty"`
}

// Handler returns the heartbeat endpoint handler. It reports the gate's
// latest snapshot: 200 when the store was reachable on the last probe,
// 503 otherwise. It keeps answering while the server drains, and flips to
// unhealthy within one probe interval of the store closing.
func (g *Gate) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snap := g.Snapshot()

		body := heartbeatBody{
			Status:    "ok",
			CheckedAt: snap.CheckedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		}
		status := http.StatusOK

		if !snap.Healthy {
			body.Status = "unhealthy"
			body.Error = snap.LastError
			status = http.StatusServiceUnavailable
		}

		if r.Method == http.MethodHead {
			w.WriteHeader(status)
			return
		}

		respond.JSON(w, status, body)
	}
}
