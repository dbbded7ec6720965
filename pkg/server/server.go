package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"watchtower-hq/janus/pkg/admission"
	"watchtower-hq/janus/pkg/config"
	"watchtower-hq/janus/pkg/events"
	"watchtower-hq/janus/pkg/health"
	"watchtower-hq/janus/pkg/observer"
	"watchtower-hq/janus/pkg/retention"
	"watchtower-hq/janus/pkg/server/handlers"
	"watchtower-hq/janus/pkg/server/middleware"
	"watchtower-hq/janus/pkg/server/respond"
	"watchtower-hq/janus/pkg/store"
	"watchtower-hq/janus/pkg/telemetry/metrics"
)

// Server is the write-path front door. It owns the request pipeline, the
// background components, and the drain sequence; the store handle is
// opened by the caller and injected.
type Server struct {
	cfg   *config.Config
	store store.Store
	bus   *events.Bus

	controller *admission.Controller
	guard      *middleware.TransportGuard
	healthGate *health.Gate
	sync       *observer.Synchronizer
	pruner     *retention.Pruner
	collector  *metrics.Collector

	coordinator  *Coordinator
	httpServer   *http.Server
	status       statusValue
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New wires a server around an already-open store and the observation
// event bus.
func New(cfg *config.Config, st store.Store, bus *events.Bus) *Server {
	collector := metrics.NewCollector(cfg.Telemetry.Metrics.Namespace, nil)

	s := &Server{
		cfg:         cfg,
		store:       st,
		bus:         bus,
		collector:   collector,
		coordinator: NewCoordinator(cfg.Server.DrainTimeout),
		shutdownCh:  make(chan struct{}),
	}
	s.status.Store(StatusStarting)

	s.healthGate = health.NewGate(st, cfg.Health.ProbeInterval, cfg.Health.ProbeTimeout, collector.ObserveProbe)
	s.controller = admission.NewController(cfg.Admission.SampleInterval, cfg.Admission.LagThreshold, collector.ObserveLag)
	s.guard = middleware.NewTransportGuard(cfg.Transport.TrustedProxies)
	s.sync = observer.New(st, collector.ObserveWrite)
	s.pruner = retention.New(st, cfg.Retention, collector.AddPruned)

	return s
}

// Status returns the current lifecycle state.
func (s *Server) Status() Status {
	return s.status.Load()
}

// ApplyRuntime applies the runtime-tunable fields of a freshly reloaded
// configuration: admission threshold and trusted proxy set. Structural
// settings are ignored; they require a restart.
func (s *Server) ApplyRuntime(cfg *config.Config) {
	s.controller.SetThreshold(cfg.Admission.LagThreshold)
	s.guard.SetTrustedProxies(cfg.Transport.TrustedProxies)
	slog.Info("runtime configuration applied",
		"lag_threshold", cfg.Admission.LagThreshold.String(),
		"trusted_proxies", len(cfg.Transport.TrustedProxies),
	)
}

// RegisterDrainHook adds a caller-owned hook ahead of the server's own
// drain sequence. Hooks run in registration order, so anything added
// here stops before the listener and the store do. Must be called
// before Start.
func (s *Server) RegisterDrainHook(name string, close func(ctx context.Context) error) {
	s.coordinator.Register(name, close)
}

// RequestShutdown asks the server to drain, as if a termination signal
// arrived. Idempotent.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// Start runs the server until a termination signal, context cancellation,
// or listener error, then drains. It returns nil on a graceful stop.
func (s *Server) Start(ctx context.Context) error {
	// Probe once synchronously so the heartbeat reflects real store
	// health before the listener binds.
	s.healthGate.Probe(ctx)
	s.healthGate.Start()

	s.controller.Start()

	if err := s.pruner.Start(); err != nil {
		return fmt.Errorf("failed to start retention scheduler: %w", err)
	}

	s.sync.Subscribe(s.bus)

	s.registerHooks()

	s.httpServer = &http.Server{
		Addr:           s.cfg.Server.ListenAddress,
		Handler:        s.routes(),
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("listening", "address", s.cfg.Server.ListenAddress,
			"write_prefix", s.cfg.Server.WritePrefix)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	s.status.Store(StatusReady)
	slog.Info("service ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		slog.Info("received termination signal", "signal", sig.String())
	case <-s.shutdownCh:
		slog.Info("shutdown requested")
	case err := <-errChan:
		s.shutdown()
		return err
	}

	s.shutdown()
	return nil
}

// shutdown transitions Ready → Draining → Stopped exactly once. Further
// termination signals during the drain are ignored by construction: the
// coordinator runs its hooks under a sync.Once and the status CAS below
// fails for every caller but the first.
func (s *Server) shutdown() {
	if !s.status.CompareAndSwap(StatusReady, StatusDraining) {
		return
	}
	slog.Info("draining: no longer accepting new connections")

	s.coordinator.Drain()

	s.status.Store(StatusStopped)
	slog.Info("service stopped")
}

// registerHooks fixes the drain order. Everything that produces store
// writes stops before the store handle closes; nothing that relies on the
// store closes after it. The health gate outlives the store close so the
// heartbeat goes unhealthy, rather than stale-healthy, once the store is
// gone.
func (s *Server) registerHooks() {
	s.coordinator.Register("listener", func(ctx context.Context) error {
		if s.httpServer == nil {
			return nil
		}
		return s.httpServer.Shutdown(ctx)
	})
	s.coordinator.Register("retention scheduler", func(ctx context.Context) error {
		s.pruner.Stop()
		return nil
	})
	s.coordinator.Register("observation synchronizer", func(ctx context.Context) error {
		return s.sync.Close(ctx)
	})
	s.coordinator.Register("event bus", func(ctx context.Context) error {
		s.bus.Close()
		return nil
	})
	s.coordinator.Register("store handle", func(ctx context.Context) error {
		return s.store.Close()
	})
	s.coordinator.Register("admission sampler", func(ctx context.Context) error {
		s.controller.Stop()
		return nil
	})
	s.coordinator.Register("health gate", func(ctx context.Context) error {
		// One last probe against the closed store flips the heartbeat to
		// unhealthy before the prober stops.
		s.healthGate.Probe(ctx)
		s.healthGate.Stop()
		return nil
	})
}

// routes builds the request pipeline. The heartbeat and metrics endpoints
// bypass admission control and access logging; everything under the write
// prefix passes the full chain and emits responses through the contract
// enforcer.
func (s *Server) routes() http.Handler {
	writeMux := http.NewServeMux()
	writeMux.Handle(s.cfg.Server.WritePrefix+"/observations",
		handlers.NewObservationsHandler(s.store))

	var writeChain http.Handler = writeMux
	writeChain = middleware.SecurityHeaders(s.cfg.Transport)(writeChain)
	writeChain = s.guard.Middleware(writeChain)
	writeChain = middleware.Logging(writeChain)
	writeChain = middleware.RequestID(writeChain)
	writeChain = admission.Middleware(s.controller, s.collector.IncRejected)(writeChain)
	writeChain = s.statusCheck(writeChain)

	mux := http.NewServeMux()
	mux.Handle(health.Path, s.healthGate.Handler())
	if s.cfg.Telemetry.Metrics.Enabled {
		mux.Handle(s.cfg.Telemetry.Metrics.Path, s.collector.Handler())
	}
	mux.Handle(s.cfg.Server.WritePrefix+"/", writeChain)

	return middleware.Recovery(mux)
}

// statusCheck rejects new work once the service is no longer Ready. The
// listener stops accepting during the drain, but requests already queued
// on live connections still arrive here.
func (s *Server) statusCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if st := s.status.Load(); st != StatusReady {
			respond.Error(w, http.StatusServiceUnavailable,
				fmt.Sprintf("service is %s", st))
			return
		}
		next.ServeHTTP(w, r)
	})
}
