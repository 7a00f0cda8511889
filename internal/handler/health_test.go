// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/landing-go/internal/scheduler"
	"github.com/olegiv/landing-go/internal/version"
)

type stubPages int

func (s stubPages) Len() int { return int(s) }

type stubJobs []scheduler.JobInfo

func (s stubJobs) List() []scheduler.JobInfo { return s }

func newTestHealthHandler() *HealthHandler {
	return NewHealthHandler(stubPages(3), stubJobs{{Name: "sweep-pages", Schedule: "@every 1m"}},
		version.Info{Version: "v1.2.3"})
}

func TestHealthHandler_Health(t *testing.T) {
	h := newTestHealthHandler()
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var status HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", status.Status)
	}
	if status.Version != "v1.2.3" {
		t.Errorf("Version = %q", status.Version)
	}
	if status.Pages != 3 {
		t.Errorf("Pages = %d, want 3", status.Pages)
	}
	if len(status.Jobs) != 1 || status.Jobs[0].Name != "sweep-pages" {
		t.Errorf("Jobs = %+v", status.Jobs)
	}
	if status.System != nil {
		t.Error("System should only be present with verbose=true")
	}
}

func TestHealthHandler_HealthVerbose(t *testing.T) {
	h := newTestHealthHandler()

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))

	var status HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.System == nil || status.System.GoVersion == "" {
		t.Errorf("System = %+v, want runtime info", status.System)
	}
	if status.Status != "starting" {
		t.Errorf("Status = %q before SetReady, want starting", status.Status)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := newTestHealthHandler()

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "alive" {
		t.Errorf("status = %q, want alive", resp["status"])
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	h := newTestHealthHandler()

	tests := []struct {
		ready      bool
		wantCode   int
		wantStatus string
	}{
		{false, http.StatusServiceUnavailable, "not_ready"},
		{true, http.StatusOK, "ready"},
		{false, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		h.SetReady(tt.ready)
		w := httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		if w.Code != tt.wantCode {
			t.Errorf("ready=%v: status = %d, want %d", tt.ready, w.Code, tt.wantCode)
		}
		var resp map[string]string
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["status"] != tt.wantStatus {
			t.Errorf("ready=%v: status = %q, want %q", tt.ready, resp["status"], tt.wantStatus)
		}
	}
}
