package httpapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/internal/config"
)

const serverVersion = "1.0.0"

type StatusDeps struct {
	Cfg     config.Config
	Started time.Time
}

func RegisterStatus(r chi.Router, d StatusDeps) {
	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{
			"status":         "healthy",
			"uptime_seconds": int(time.Since(d.Started).Seconds()),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"services": map[string]string{
				"paragon_api": configured(d.Cfg.Paragon.ServerToken),
			},
		})
	})

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{
			"server":         "cma-api",
			"version":        serverVersion,
			"port":           d.Cfg.Port,
			"uptime_seconds": int(time.Since(d.Started).Seconds()),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"goroutines":     runtime.NumGoroutine(),
		})
	})
}

func configured(token string) string {
	if token == "" {
		return "not_configured"
	}
	return "configured"
}
