// Package server holds the health endpoints and graceful-shutdown plumbing
// the serve command mounts next to the API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus classifies a component or the service as a whole.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck reports one dependency's state.
type HealthCheck struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse is the body served from /health. The service is unhealthy
// when any check is; a degraded check degrades the whole without failing it.
type HealthResponse struct {
	Service   string        `json:"service"`
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Checks    []HealthCheck `json:"checks,omitempty"`
}

// HealthChecker probes one dependency. The context carries the per-request
// deadline; checkers must not outlive it.
type HealthChecker func(ctx context.Context) HealthCheck

// checkTimeout bounds the combined run of all checkers per /health request.
const checkTimeout = 5 * time.Second

// HealthServer answers liveness, readiness and full health probes. It does
// not listen on its own; the serve command mounts Handler on its mux.
type HealthServer struct {
	mu      sync.RWMutex
	checks  map[string]HealthChecker
	service string
	version string
	ready   bool
	live    bool
}

// HealthConfig configures the health server.
type HealthConfig struct {
	Service string // defaults to "ragpipe"
	Version string
}

// NewHealthServer creates a health server. It starts live but not ready;
// callers flip readiness once their dependencies are wired.
func NewHealthServer(config *HealthConfig) *HealthServer {
	service, version := "ragpipe", ""
	if config != nil {
		if config.Service != "" {
			service = config.Service
		}
		version = config.Version
	}

	return &HealthServer{
		checks:  make(map[string]HealthChecker),
		service: service,
		version: version,
		live:    true,
	}
}

// RegisterCheck adds a named dependency check to /health.
func (s *HealthServer) RegisterCheck(name string, checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = checker
}

// SetReady flips the readiness probe.
func (s *HealthServer) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// SetLive flips the liveness probe.
func (s *HealthServer) SetLive(live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = live
}

// Handler serves /health, /ready and /live plus their Kubernetes -z aliases.
func (s *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ready", s.probeHandler(func() bool { return s.ready }))
	mux.HandleFunc("/readyz", s.probeHandler(func() bool { return s.ready }))
	mux.HandleFunc("/live", s.probeHandler(func() bool { return s.live }))
	mux.HandleFunc("/livez", s.probeHandler(func() bool { return s.live }))
	return mux
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]HealthChecker, len(names))
	for i, name := range names {
		checks[i] = s.checks[name]
	}
	version := s.version
	s.mu.RUnlock()

	response := HealthResponse{
		Service:   s.service,
		Status:    HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   version,
		Checks:    make([]HealthCheck, 0, len(checks)),
	}

	for i, checker := range checks {
		check := checker(ctx)
		check.Name = names[i]
		response.Checks = append(response.Checks, check)

		switch check.Status {
		case HealthStatusUnhealthy:
			response.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if response.Status == HealthStatusHealthy {
				response.Status = HealthStatusDegraded
			}
		}
	}

	statusCode := http.StatusOK
	if response.Status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	s.writeJSON(w, statusCode, response)
}

// probeHandler serves the binary ready/live probes, which skip the
// dependency checks entirely.
func (s *HealthServer) probeHandler(up func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		ok := up()
		s.mu.RUnlock()

		response := HealthResponse{
			Service:   s.service,
			Status:    HealthStatusHealthy,
			Timestamp: time.Now().UTC(),
		}
		if !ok {
			response.Status = HealthStatusUnhealthy
			s.writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		s.writeJSON(w, http.StatusOK, response)
	}
}

func (s *HealthServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// VectorStoreHealthChecker probes the vector store with ping. A failed ping
// is unhealthy: without the store neither pipeline can run.
func VectorStoreHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheck {
		if err := ping(ctx); err != nil {
			return HealthCheck{
				Status:  HealthStatusUnhealthy,
				Message: "vector store unreachable: " + err.Error(),
			}
		}
		return HealthCheck{
			Status:  HealthStatusHealthy,
			Message: "vector store reachable",
		}
	}
}

// LLMHealthChecker reports the configured LLM provider. With a nil probe it
// only confirms configuration; with one, a failing probe marks the provider
// degraded rather than unhealthy, since queries may still succeed on retry.
func LLMHealthChecker(providerName string, probe func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheck {
		details := map[string]string{"provider": providerName}
		if probe == nil {
			return HealthCheck{
				Status:  HealthStatusHealthy,
				Message: "llm provider configured",
				Details: details,
			}
		}
		if err := probe(ctx); err != nil {
			return HealthCheck{
				Status:  HealthStatusDegraded,
				Message: "llm provider degraded: " + err.Error(),
				Details: details,
			}
		}
		return HealthCheck{
			Status:  HealthStatusHealthy,
			Message: "llm provider responding",
			Details: details,
		}
	}
}
