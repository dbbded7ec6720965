// Package admission sheds load before requests reach any handler.
//
// A Controller continuously samples scheduler lag: it arms a timer for a
// fixed interval and measures how late the timer actually fires. Under
// saturation the runtime falls behind on timers the same way it falls
// behind on request goroutines, so the lag is a cheap proxy for service
// backlog. When lag exceeds the configured threshold every new request is
// rejected with 503 until the lag subsides.
//
// Rejection is O(1): it reads one atomically-replaced sample and performs
// no I/O, because shedding must stay cheap precisely when the system is
// already struggling. Rejections are counted, not logged per-request.
package admission
