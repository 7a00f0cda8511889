// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/olegiv/landing-go/internal/scheduler"
	"github.com/olegiv/landing-go/internal/version"
)

// pageCounter reports the number of live page sessions.
type pageCounter interface {
	Len() int
}

// jobLister reports the scheduler's jobs.
type jobLister interface {
	List() []scheduler.JobInfo
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pages     pageCounter
	jobs      jobLister
	version   version.Info
	startTime time.Time
	ready     atomic.Bool
}

// NewHealthHandler creates a new health handler. It reports not ready until
// SetReady(true) is called.
func NewHealthHandler(pages pageCounter, jobs jobLister, info version.Info) *HealthHandler {
	return &HealthHandler{
		pages:     pages,
		jobs:      jobs,
		version:   info,
		startTime: time.Now(),
	}
}

// SetReady flips the readiness probe, e.g. off at the start of shutdown.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   string              `json:"version"`
	Pages     int                 `json:"pages"`
	Jobs      []scheduler.JobInfo `json:"jobs"`
	System    *SystemInfo         `json:"system,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.Version,
		Pages:     h.pages.Len(),
		Jobs:      h.jobs.List(),
	}
	if status.Version == "" {
		status.Version = "dev"
	}
	if !h.ready.Load() {
		status.Status = "starting"
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeJSON writes v as a JSON response with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
