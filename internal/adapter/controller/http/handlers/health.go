package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/kr1s57/urlsentinel/internal/adapter/external/threatintel"
	"github.com/kr1s57/urlsentinel/internal/config"
)

var startTime = time.Now()

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string                       `json:"status"`
	Version     string                       `json:"version"`
	Uptime      string                       `json:"uptime"`
	Environment string                       `json:"environment"`
	Timestamp   time.Time                    `json:"timestamp"`
	Providers   []threatintel.ProviderStatus `json:"providers"`
	Classifier  ClassifierInfo               `json:"classifier"`
	System      SystemInfo                   `json:"system"`
}

// ClassifierInfo reports whether the optional model artifact is loaded
type ClassifierInfo struct {
	Loaded  bool   `json:"loaded"`
	Version string `json:"version,omitempty"`
}

// SystemInfo represents system information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
}

// HealthCheck returns a handler for the health check endpoint. The service
// is "healthy" as long as it can serve scans; unconfigured providers only
// degrade the status because they lower scan confidence.
func HealthCheck(cfg *config.Config, agg *threatintel.Aggregator, classifierVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		providers := agg.ProviderStatus()

		status := "healthy"
		for _, p := range providers {
			if !p.Configured {
				status = "degraded"
				break
			}
		}

		response := HealthResponse{
			Status:      status,
			Version:     "1.0.0",
			Uptime:      time.Since(startTime).Round(time.Second).String(),
			Environment: cfg.App.Env,
			Timestamp:   time.Now().UTC(),
			Providers:   providers,
			Classifier: ClassifierInfo{
				Loaded:  classifierVersion != "",
				Version: classifierVersion,
			},
			System: SystemInfo{
				GoVersion:    runtime.Version(),
				NumCPU:       runtime.NumCPU(),
				NumGoroutine: runtime.NumGoroutine(),
				MemAllocMB:   m.Alloc / 1024 / 1024,
			},
		}

		JSONResponse(w, http.StatusOK, response)
	}
}
