package server

import "sync/atomic"

// Status is the service lifecycle state. Transitions are one-way:
// Starting → Ready → Draining → Stopped. Only the lifecycle transitions
// to Ready; only the shutdown coordinator moves past it.
type Status int32

const (
	StatusStarting Status = iota
	StatusReady
	StatusDraining
	StatusStopped
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusReady:
		return "ready"
	case StatusDraining:
		return "draining"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// statusValue holds a Status with atomic access.
type statusValue struct {
	v atomic.Int32
}

func (sv *statusValue) Load() Status {
	return Status(sv.v.Load())
}

func (sv *statusValue) Store(s Status) {
	sv.v.Store(int32(s))
}

// CompareAndSwap transitions from old to new atomically, reporting
// whether the transition happened.
func (sv *statusValue) CompareAndSwap(old, new Status) bool {
	return sv.v.CompareAndSwap(int32(old), int32(new))
}
