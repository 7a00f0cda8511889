// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/landing-go/internal/render"
	"github.com/olegiv/landing-go/internal/session"
	"github.com/olegiv/landing-go/internal/testutil"
	"github.com/olegiv/landing-go/web"
)

// testEnv bundles a contact handler wired to a fake clock.
type testEnv struct {
	handler *ContactHandler
	pages   *PageRegistry
	clock   *testutil.FakeClock
	router  chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	templates, err := web.TemplateFS()
	if err != nil {
		t.Fatalf("TemplateFS: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, IsDev: true})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	logger := testutil.TestLoggerSilent()
	clock := testutil.NewFakeClock()
	pages := NewPageRegistry(logger, clock)
	t.Cleanup(pages.Close)

	h := NewContactHandler(renderer, pages, logger)

	r := chi.NewRouter()
	r.Get(RouteRoot, h.Home)
	r.Post(RouteContact, h.Submit)
	r.Post(RouteContactBlur, h.Blur)
	r.Post(RouteContactInput, h.Input)

	return &testEnv{handler: h, pages: pages, clock: clock, router: r}
}

// datastarRequest builds a datastar action request carrying sig.
func datastarRequest(t *testing.T, path string, sig contactSignals) *http.Request {
	t.Helper()
	body, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("marshal signals: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerDatastarRequest, "true")
	return req
}

// formRequest builds a plain form post.
func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, RouteContact, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// signalPatches extracts the signal patches of a datastar event stream in order.
func signalPatches(t *testing.T, body string) []map[string]any {
	t.Helper()
	var patches []map[string]any
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		raw, ok := strings.CutPrefix(line, "data: signals ")
		if !ok {
			continue
		}
		var patch map[string]any
		if err := json.Unmarshal([]byte(raw), &patch); err != nil {
			t.Fatalf("decode patch %q: %v", raw, err)
		}
		patches = append(patches, patch)
	}
	return patches
}

// mergedPatches folds all patches into one object.
func mergedPatches(patches []map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, p := range patches {
		mergePatch(merged, p)
	}
	return merged
}

func validSignals(pageID string) contactSignals {
	sig := newContactSignals(pageID)
	sig.Name = "Jane"
	sig.Email = "jane@x.com"
	sig.Subject = "Hi"
	sig.Message = "Hello"
	return sig
}

// page returns the live page for id, failing the test if there is none.
func (e *testEnv) page(t *testing.T, id string) *Page {
	t.Helper()
	p, ok := e.pages.Get(id)
	if !ok {
		t.Fatalf("no page %s", id)
	}
	return p
}

func navSeq(p *Page) int {
	p.surface.mu.Lock()
	defer p.surface.mu.Unlock()
	return p.surface.navSeq
}

func newPageID() string { return session.NewID() }
