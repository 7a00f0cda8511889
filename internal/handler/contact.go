// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/olegiv/landing-go/internal/contact"
	"github.com/olegiv/landing-go/internal/logging"
	"github.com/olegiv/landing-go/internal/render"
	"github.com/olegiv/landing-go/internal/session"
)

// Page is the server-side state of one rendered landing page: the contact
// controller and the signal surface it drives.
type Page struct {
	mu      sync.Mutex // serializes load-and-act sequences
	surface *signalSurface
	ctrl    *contact.Controller
}

// Close stops the page's revert timer and releases its open streams.
func (p *Page) Close() {
	p.ctrl.Close()
	p.surface.ReleaseAll()
}

// PageRegistry holds the live pages keyed by page id.
type PageRegistry = session.Registry[*Page]

// NewPageRegistry creates a registry whose pages run their controllers on
// clock. A nil clock uses the system clock.
func NewPageRegistry(logger *slog.Logger, clock contact.Clock, opts ...session.Option) *PageRegistry {
	if clock == nil {
		clock = contact.SystemClock()
	}
	return session.NewRegistry(func(id string) *Page {
		pageLogger := logger.With("page_id", id)
		surface := newSignalSurface(pageLogger)
		return &Page{
			surface: surface,
			ctrl: contact.NewController(surface,
				contact.WithClock(clock),
				contact.WithLogger(pageLogger),
			),
		}
	}, opts...)
}

// ContactHandler serves the landing page and the contact form endpoints.
type ContactHandler struct {
	renderer *render.Renderer
	pages    *PageRegistry
	logger   *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(renderer *render.Renderer, pages *PageRegistry, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		renderer: renderer,
		pages:    pages,
		logger:   logger,
	}
}

// homePage is the template data of pages/home.html.
type homePage struct {
	Signals   contactSignals
	Success   bool
	Mailto    string
	Recipient string
}

// Home handles GET / and mints a new page id.
func (h *ContactHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, homePage{Signals: newContactSignals(session.NewID())})
}

// Blur handles POST /contact/blur/{field}.
func (h *ContactHandler) Blur(w http.ResponseWriter, r *http.Request) {
	name, sig, page, ok := h.fieldRequest(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	page.mu.Lock()
	a := page.surface.Attach(sseSink{sse})
	page.surface.Load(sig)
	res := page.ctrl.Blur(name)
	page.surface.Detach(a)
	page.mu.Unlock()

	ctx := logging.WithPageID(r.Context(), sig.PageID)
	h.logger.DebugContext(ctx, "contact field validated", "field", name, "validity", res.Validity)
}

// Input handles POST /contact/input/{field}. Nothing is patched unless the
// field was already marked invalid.
func (h *ContactHandler) Input(w http.ResponseWriter, r *http.Request) {
	name, sig, page, ok := h.fieldRequest(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	page.mu.Lock()
	a := page.surface.Attach(sseSink{sse})
	page.surface.Load(sig)
	res, ran := page.ctrl.Input(name)
	page.surface.Detach(a)
	page.mu.Unlock()

	if ran {
		ctx := logging.WithPageID(r.Context(), sig.PageID)
		h.logger.DebugContext(ctx, "contact field revalidated", "field", name, "validity", res.Validity)
	}
}

// Submit handles POST /contact. Datastar requests drive the page's
// controller and keep the stream open until the form is restored; plain
// form posts are answered with a rendered page.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !isDatastarRequest(r) {
		h.submitForm(w, r)
		return
	}

	sig, err := readSignals(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid contact signals", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	page, ok := h.page(w, r, sig.PageID)
	if !ok {
		return
	}
	ctx := logging.WithPageID(r.Context(), sig.PageID)

	sse := datastar.NewSSE(w, r)
	page.mu.Lock()
	page.surface.ReleaseAll()
	a := page.surface.Attach(sseSink{sse})
	page.surface.Load(sig)
	sub, err := page.ctrl.Submit()
	idle := page.ctrl.Idle()
	page.mu.Unlock()
	defer page.surface.Detach(a)

	if err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			h.logger.DebugContext(ctx, "contact form rejected", "error", err)
			return
		}
		h.logger.ErrorContext(ctx, "contact submission failed", "error", err)
		return
	}
	h.logger.InfoContext(ctx, "contact form submitted", "submission_id", sub.ID)

	select {
	case <-idle:
	case <-a.Released():
	case <-r.Context().Done():
	}
}

// submitForm is the no-JavaScript path of POST /contact.
func (h *ContactHandler) submitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSignalsBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	pageID := r.PostForm.Get("pageId")
	if !session.ValidID(pageID) {
		pageID = session.NewID()
	}
	data := homePage{Signals: newContactSignals(pageID)}

	values := make(map[contact.FieldName]string, len(contact.Fields))
	for _, name := range contact.Fields {
		v := r.PostForm.Get(string(name))
		values[name] = v
		data.Signals.setValue(name, v)
	}

	results, err := contact.ValidateAll(values)
	if err != nil {
		for name, res := range results {
			data.Signals.Errors[string(name)] = res.Message
		}
		h.logger.DebugContext(r.Context(), "contact form rejected", "error", err)
		h.renderHome(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	snap, err := contact.NewSnapshot(values)
	if err != nil {
		logAndInternalError(w, "capturing contact snapshot", "error", err)
		return
	}

	data.Success = true
	data.Mailto = contact.MailtoURI(contact.Recipient, snap)
	data.Signals = newContactSignals(pageID)
	data.Signals.FormHidden = true
	data.Signals.ShowSuccess = true

	h.logger.InfoContext(r.Context(), "contact form submitted", "submission_id", uuid.NewString(), "fallback", true)
	h.renderHome(w, r, http.StatusOK, data)
}

// fieldRequest resolves the field, signals and page of a blur or input request.
func (h *ContactHandler) fieldRequest(w http.ResponseWriter, r *http.Request) (contact.FieldName, contactSignals, *Page, bool) {
	field := chi.URLParam(r, "field")
	if !contact.IsKnownField(field) {
		http.NotFound(w, r)
		return "", contactSignals{}, nil, false
	}

	sig, err := readSignals(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid contact signals", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", contactSignals{}, nil, false
	}

	page, ok := h.page(w, r, sig.PageID)
	if !ok {
		return "", contactSignals{}, nil, false
	}
	return contact.FieldName(field), sig, page, true
}

// page looks up or creates the page for id, writing an error response on failure.
func (h *ContactHandler) page(w http.ResponseWriter, r *http.Request, id string) (*Page, bool) {
	page, created, err := h.pages.GetOrCreate(id)
	switch {
	case errors.Is(err, session.ErrInvalidID):
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	case err != nil:
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	if created {
		h.logger.DebugContext(r.Context(), "page session created", "page_id", id)
	}
	return page, true
}

func (h *ContactHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, data homePage) {
	data.Recipient = contact.Recipient
	err := h.renderer.Render(w, status, "home", render.TemplateData{
		Title:       pageTitle,
		Description: pageDescription,
		Data:        data,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "rendering home page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
