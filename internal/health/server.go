// Package health provides health check and monitoring for the reclamos service.
//
// This package implements:
//   - HTTP health check endpoint
//   - Prometheus metrics endpoint
//   - Uptime and last-intake tracking
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status represents the application health status.
//
// This is returned by the /health endpoint for monitoring tools.
type Status struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	StoreBackend     string `json:"store_backend"`
	LastIntakeTime   string `json:"last_intake_time"`
	LastIntakeStatus string `json:"last_intake_status"`
	BotEnabled       bool   `json:"bot_enabled"`
}

// Monitor tracks application health.
//
// Thread-safety:
//   - All fields are protected by RWMutex
//   - Safe for concurrent updates from request goroutines
type Monitor struct {
	startTime        time.Time
	storeBackend     string
	botEnabled       bool
	lastIntakeTime   time.Time
	lastIntakeStatus string
	mu               sync.RWMutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(storeBackend string, botEnabled bool) *Monitor {
	return &Monitor{
		startTime:        time.Now(),
		storeBackend:     storeBackend,
		botEnabled:       botEnabled,
		lastIntakeStatus: "not started",
	}
}

// UpdateIntakeStatus records the outcome of the latest intake.
//
// This should be called:
//   - After an accepted complaint: UpdateIntakeStatus("accepted")
//   - After a failed one: UpdateIntakeStatus("invalid") or ("storage_failure")
func (m *Monitor) UpdateIntakeStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastIntakeTime = time.Now()
	m.lastIntakeStatus = status
}

// GetStatus returns the current health status.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lastIntake := ""
	if !m.lastIntakeTime.IsZero() {
		lastIntake = m.lastIntakeTime.Format("2006-01-02 15:04:05")
	}

	return Status{
		Status:           "healthy",
		Uptime:           time.Since(m.startTime).Round(time.Second).String(),
		StoreBackend:     m.storeBackend,
		LastIntakeTime:   lastIntake,
		LastIntakeStatus: m.lastIntakeStatus,
		BotEnabled:       m.botEnabled,
	}
}

// Handler returns the health mux.
//
// Endpoints:
//   - GET /health: JSON health status
//   - GET /metrics: Prometheus metrics
//
// Example /health response:
//
//	{
//	  "status": "healthy",
//	  "uptime": "1h2m3s",
//	  "store_backend": "file",
//	  "last_intake_time": "2026-01-15 10:30:00",
//	  "last_intake_status": "accepted",
//	  "bot_enabled": true
//	}
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(m.GetStatus())
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// NewServer builds the health check HTTP server listening on port.
//
// The caller owns the server lifecycle (ListenAndServe / Shutdown).
func NewServer(monitor *Monitor, port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           monitor.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
