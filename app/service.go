package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/kilianp07/traveldelay/api"
	"github.com/kilianp07/traveldelay/config"
	"github.com/kilianp07/traveldelay/core/factory"
	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
	coremon "github.com/kilianp07/traveldelay/core/monitoring"
	"github.com/kilianp07/traveldelay/core/prediction"
	_ "github.com/kilianp07/traveldelay/infra/artifact"
	"github.com/kilianp07/traveldelay/infra/logger"
	"github.com/kilianp07/traveldelay/infra/metrics"
	"github.com/kilianp07/traveldelay/infra/monitoring"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// Service wires the prediction engine, the HTTP API and the metrics pipeline.
type Service struct {
	cfg       *config.Config
	engine    *prediction.Engine
	collector *metrics.Collector
	monitor   coremon.Monitor
	handler   http.Handler
	log       logger.Logger
	logCloser io.Closer
}

// New creates a Service from the configuration. The estimator is built once
// here; a failure to load it leaves the service running in a degraded state.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logCloser, err := logger.Setup(logger.Options{
		Level:      cfg.Logging.Level,
		Debug:      cfg.Server.Debug,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}

	engine, err := prediction.BuildEngine(ctx, cfg.Estimator)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("estimator: %w", err)
	}
	if engine.Available() {
		logg.Infof("estimator %s ready", engine.Name())
	} else {
		logg.Errorf("estimator %s not loaded: %v", engine.Name(), engine.LoadError())
		mon.CaptureException(engine.LoadError(), map[string]string{"estimator": engine.Name()})
	}

	sink, err := coremetrics.NewMetricsSink(ctx, sinkConfigs(cfg.Metrics))
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	collector := metrics.NewCollector(sink, 0, logger.New("metrics"))
	if err := collector.RecordModelStatus(engine.Name(), engine.Available()); err != nil {
		logg.Warnf("record model status: %v", err)
	}

	handler := api.NewRouter(engine, api.Options{
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Sink:         collector,
		Monitor:      mon,
		Logger:       logger.New("http"),
	})

	return &Service{
		cfg:       cfg,
		engine:    engine,
		collector: collector,
		monitor:   mon,
		handler:   handler,
		log:       logg,
		logCloser: logCloser,
	}, nil
}

// sinkConfigs adds the Prometheus sink when enabled and not listed already.
func sinkConfigs(cfg coremetrics.Config) []factory.ModuleConfig {
	sinks := append([]factory.ModuleConfig(nil), cfg.Sinks...)
	if !cfg.PrometheusEnabled {
		return sinks
	}
	for _, s := range sinks {
		if s.Type == "prometheus" {
			return sinks
		}
	}
	return append(sinks, factory.ModuleConfig{Type: "prometheus"})
}

// Engine returns the prediction engine built at start-up.
func (s *Service) Engine() *prediction.Engine { return s.engine }

// Handler returns the HTTP handler of the API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run listens on the configured address and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	s.collector.Start(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout(),
		WriteTimeout:      s.cfg.Server.WriteTimeout(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s (estimator %s)", ln.Addr(), s.engine.Name())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Infof("server stopped")
	return nil
}

// Close flushes pending metrics and error reports and releases resources held
// by the service.
func (s *Service) Close() error {
	err := s.collector.Close()
	s.monitor.Flush(2 * time.Second)
	return errors.Join(err, s.logCloser.Close())
}
