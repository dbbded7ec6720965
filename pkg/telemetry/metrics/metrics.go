// Package metrics provides Prometheus metrics for the front door:
// admission lag and rejections, health probe outcomes, and observation
// write results.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns all Prometheus metrics for the service.
type Collector struct {
	registry *prometheus.Registry

	schedulerLag       prometheus.Gauge
	admissionShedding  prometheus.Gauge
	rejectedTotal      prometheus.Counter
	probesTotal        *prometheus.CounterVec
	storeHealthy       prometheus.Gauge
	observationWrites  *prometheus.CounterVec
	prunedRecordsTotal prometheus.Counter
}

// NewCollector creates and registers all metrics. If registry is nil a
// fresh one is used.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "janus"
	}

	c := &Collector{
		registry: registry,

		schedulerLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_lag_seconds",
			Help:      "Latest sampled scheduler lag",
		}),

		admissionShedding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "admission_shedding",
			Help:      "1 while requests are being rejected for overload, else 0",
		}),

		rejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_rejected_total",
			Help:      "Requests rejected by admission control",
		}),

		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_probes_total",
			Help:      "Store liveness probes by result",
		}, []string{"result"}),

		storeHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_healthy",
			Help:      "1 if the last store probe succeeded, else 0",
		}),

		observationWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observation_writes_total",
			Help:      "Observation store writes by result",
		}, []string{"result"}),

		prunedRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_records_total",
			Help:      "IdP records removed by retention pruning",
		}),
	}

	registry.MustRegister(
		c.schedulerLag,
		c.admissionShedding,
		c.rejectedTotal,
		c.probesTotal,
		c.storeHealthy,
		c.observationWrites,
		c.prunedRecordsTotal,
	)

	return c
}

// ObserveLag records a scheduler lag sample.
func (c *Collector) ObserveLag(lag time.Duration, exceeded bool) {
	c.schedulerLag.Set(lag.Seconds())
	if exceeded {
		c.admissionShedding.Set(1)
	} else {
		c.admissionShedding.Set(0)
	}
}

// IncRejected counts one admission rejection.
func (c *Collector) IncRejected() {
	c.rejectedTotal.Inc()
}

// ObserveProbe records a store probe outcome.
func (c *Collector) ObserveProbe(healthy bool) {
	if healthy {
		c.probesTotal.WithLabelValues("ok").Inc()
		c.storeHealthy.Set(1)
	} else {
		c.probesTotal.WithLabelValues("failure").Inc()
		c.storeHealthy.Set(0)
	}
}

// ObserveWrite records an observation write outcome.
func (c *Collector) ObserveWrite(ok bool) {
	if ok {
		c.observationWrites.WithLabelValues("ok").Inc()
	} else {
		c.observationWrites.WithLabelValues("failure").Inc()
	}
}

// AddPruned counts records removed by retention pruning.
func (c *Collector) AddPruned(n int64) {
	c.prunedRecordsTotal.Add(float64(n))
}
