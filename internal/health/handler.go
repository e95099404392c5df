// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	statusOK           = "ok"
	statusDegraded     = "degraded"
	statusUnavailable  = "unavailable"
	statusNotReady     = "not_ready"
	statusShuttingDown = "shutting_down"

	checkTimeout = 5 * time.Second
)

type Checker interface {
	Ping(ctx context.Context) error
}

// Check is one dependency probed by readiness. A failing critical check
// takes the instance out of rotation; any other failure only reports it
// as degraded.
type Check struct {
	Name     string
	Checker  Checker
	Critical bool
}

type Handler struct {
	checks   []Check
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(checks ...Check) *Handler {
	h := &Handler{checks: checks}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: statusShuttingDown})
		return
	}
	writeStatus(w, http.StatusOK, StatusResponse{Status: statusOK})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: statusShuttingDown})
		return
	case !h.ready.Load():
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: statusNotReady})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := h.probeAll(ctx)

	status, code := statusOK, http.StatusOK
	for i, res := range results {
		if res.Healthy {
			continue
		}
		if h.checks[i].Critical {
			status, code = statusUnavailable, http.StatusServiceUnavailable
			break
		}
		status = statusDegraded
	}

	writeStatus(w, code, ReadinessResponse{
		Status: status,
		Checks: results,
	})
}

func (h *Handler) probeAll(ctx context.Context) []HealthCheck {
	results := make([]HealthCheck, len(h.checks))

	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Go(func() {
			results[i] = probe(ctx, c)
		})
	}
	wg.Wait()

	return results
}

func probe(ctx context.Context, c Check) HealthCheck {
	res := HealthCheck{
		Name:     c.Name,
		Critical: c.Critical,
		Healthy:  true,
	}

	if c.Checker == nil {
		res.Healthy = false
		res.Message = c.Name + " checker not configured"
		return res
	}

	start := time.Now()
	err := c.Checker.Ping(ctx)
	res.Latency = time.Since(start).String()

	if err != nil {
		res.Healthy = false
		res.Message = "ping failed"
	}
	return res
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name     string `json:"name"`
	Critical bool   `json:"critical"`
	Healthy  bool   `json:"healthy"`
	Latency  string `json:"latency,omitempty"`
	Message  string `json:"message,omitempty"`
}
