// Package status serves the liveness endpoints.
package status

import (
	"net/http"

	"github.com/kilianp07/traveldelay/api/middleware"
	"github.com/kilianp07/traveldelay/core/logger"
	"github.com/kilianp07/traveldelay/core/prediction"
)

// HomeMessage is the plain text body of GET /.
const HomeMessage = "Smart Traffic Delay Predictor API is running!"

// NewHomeHandler returns the handler for GET /.
func NewHomeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(HomeMessage))
	})
}

// Health is the body of GET /health.
type Health struct {
	Status      string `json:"status"`
	Estimator   string `json:"estimator"`
	ModelLoaded bool   `json:"model_loaded"`
}

// NewHealthHandler reports the estimator state. The service answers "ok"
// even when the estimator failed to load.
func NewHealthHandler(engine *prediction.Engine, log logger.Logger) http.Handler {
	return healthHandler(log, func() any {
		return Health{
			Status:      "ok",
			Estimator:   engine.Name(),
			ModelLoaded: engine.Available(),
		}
	})
}

func healthHandler(log logger.Logger, body func() any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := middleware.WriteJSON(w, http.StatusOK, body()); err != nil {
			log.Errorf("health: encode response: %v", err)
		}
	})
}
