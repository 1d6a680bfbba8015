// Package api assembles the HTTP routes of the delay prediction service.
package api

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/kilianp07/traveldelay/api/middleware"
	"github.com/kilianp07/traveldelay/api/predict"
	"github.com/kilianp07/traveldelay/api/status"
	"github.com/kilianp07/traveldelay/core/logger"
	"github.com/kilianp07/traveldelay/core/metrics"
	"github.com/kilianp07/traveldelay/core/monitoring"
	"github.com/kilianp07/traveldelay/core/prediction"
	infralogger "github.com/kilianp07/traveldelay/infra/logger"
)

// Options configures NewRouter.
type Options struct {
	// CORSOrigins lists the allowed origins; empty allows any origin.
	CORSOrigins  []string
	MaxBodyBytes int64
	Sink         metrics.MetricsSink
	Monitor      monitoring.Monitor
	Logger       logger.Logger
}

// NewRouter returns the service handler:
//
//	GET  /               liveness text
//	GET  /health         estimator state
//	POST /predict-delay  delay prediction
func NewRouter(engine *prediction.Engine, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = infralogger.NopLogger{}
	}
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NopMonitor{}
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", status.NewHomeHandler())
	mux.Handle("GET /health", status.NewHealthHandler(engine, opts.Logger))
	mux.Handle("POST /predict-delay", predict.NewHandler(engine, predict.Options{
		MaxBodyBytes: opts.MaxBodyBytes,
		Sink:         opts.Sink,
		Monitor:      opts.Monitor,
		Logger:       opts.Logger,
	}))

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recover(opts.Logger, opts.Monitor),
		middleware.Logging(opts.Logger),
		c.Handler,
	)
}
