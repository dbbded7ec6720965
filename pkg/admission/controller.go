package admission

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// LoadSample is the latest scheduler lag measurement. It is replaced
// atomically by the sampler and read lock-free by the middleware.
type LoadSample struct {
	Lag               time.Duration
	ThresholdExceeded bool
	SampledAt         time.Time
}

// Controller measures service saturation and decides request admission.
type Controller struct {
	interval  time.Duration
	threshold atomic.Int64 // nanoseconds; runtime-tunable
	logger    *slog.Logger
	onSample  func(lag time.Duration, exceeded bool)

	sample atomic.Pointer[LoadSample]

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewController creates a controller sampling scheduler lag every interval
// and rejecting requests while lag exceeds threshold. onSample, if
// non-nil, receives every sample (used for metrics).
func NewController(interval, threshold time.Duration, onSample func(lag time.Duration, exceeded bool)) *Controller {
	c := &Controller{
		interval: interval,
		logger:   slog.Default().With("component", "admission"),
		onSample: onSample,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	c.threshold.Store(int64(threshold))
	c.sample.Store(&LoadSample{SampledAt: time.Now()})
	return c
}

// Start launches the background sampler.
func (c *Controller) Start() {
	if c.started.Swap(true) {
		return
	}
	go c.loop()
}

// Stop halts the sampler and waits for it to exit. Safe to call more than
// once. After Stop the last sample remains in effect for Admit.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	if c.started.Load() {
		<-c.doneCh
	}
}

// Admit reports whether a new request may proceed. O(1), no I/O.
func (c *Controller) Admit() bool {
	return !c.sample.Load().ThresholdExceeded
}

// Sample returns the latest load sample.
func (c *Controller) Sample() LoadSample {
	return *c.sample.Load()
}

// SetThreshold replaces the lag threshold at runtime. The next sample
// applies it; in-flight decisions keep the sample they read.
func (c *Controller) SetThreshold(threshold time.Duration) {
	c.threshold.Store(int64(threshold))
}

// Threshold returns the current lag threshold.
func (c *Controller) Threshold() time.Duration {
	return time.Duration(c.threshold.Load())
}

func (c *Controller) loop() {
	defer close(c.doneCh)

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	expected := time.Now().Add(c.interval)

	for {
		select {
		case <-timer.C:
			now := time.Now()
			lag := now.Sub(expected)
			if lag < 0 {
				lag = 0
			}
			c.record(lag, now)

			expected = now.Add(c.interval)
			timer.Reset(c.interval)

		case <-c.stopCh:
			return
		}
	}
}

func (c *Controller) record(lag time.Duration, now time.Time) {
	exceeded := lag > c.Threshold()

	previous := c.sample.Load()
	c.sample.Store(&LoadSample{
		Lag:               lag,
		ThresholdExceeded: exceeded,
		SampledAt:         now,
	})

	// Log transitions, never individual rejections: per-request logging
	// under overload would itself add load.
	if exceeded && !previous.ThresholdExceeded {
		c.logger.Warn("shedding load: scheduler lag above threshold",
			"lag_ms", lag.Milliseconds(),
			"threshold_ms", c.Threshold().Milliseconds(),
		)
	} else if !exceeded && previous.ThresholdExceeded {
		c.logger.Info("load subsided: accepting requests again",
			"lag_ms", lag.Milliseconds(),
		)
	}

	if c.onSample != nil {
		c.onSample(lag, exceeded)
	}
}
