// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/olegiv/landing-go/internal/contact"
)

// signalSink receives signal patches for the browser.
type signalSink interface {
	PatchSignals(patch map[string]any) error
}

// sseSink writes patches as datastar-patch-signals events.
type sseSink struct {
	sse *datastar.ServerSentEventGenerator
}

func (s sseSink) PatchSignals(patch map[string]any) error {
	return s.sse.MarshalAndPatchSignals(patch)
}

// attachment is one open response stream bound to a surface.
type attachment struct {
	sink     signalSink
	released chan struct{}
	once     sync.Once
}

// Released is closed once the surface no longer writes to this stream.
func (a *attachment) Released() <-chan struct{} {
	return a.released
}

func (a *attachment) release() {
	a.once.Do(func() { close(a.released) })
}

// signalSurface implements contact.Surface over datastar signals. Field
// values and error state come from each request's signals; every mutation is
// written to the most recently attached stream, or held until one attaches.
type signalSurface struct {
	logger *slog.Logger

	mu       sync.Mutex
	values   map[contact.FieldName]string
	errors   map[contact.FieldName]string
	navSeq   int
	attached []*attachment
	pending  map[string]any
}

var _ contact.Surface = (*signalSurface)(nil)

func newSignalSurface(logger *slog.Logger) *signalSurface {
	return &signalSurface{
		logger: logger,
		values: make(map[contact.FieldName]string, len(contact.Fields)),
		errors: make(map[contact.FieldName]string, len(contact.Fields)),
	}
}

// Load replaces field values and error state with what the browser sent.
func (s *signalSurface) Load(sig contactSignals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range contact.Fields {
		s.values[name] = sig.value(name)
		s.errors[name] = sig.Errors[string(name)]
	}
}

// Attach binds a stream and flushes anything queued while none was attached.
func (s *signalSurface) Attach(sink signalSink) *attachment {
	a := &attachment{sink: sink, released: make(chan struct{})}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = append(s.attached, a)
	if s.pending != nil {
		patch := s.pending
		s.pending = nil
		s.writeLocked(patch)
	}
	return a
}

// Detach unbinds a stream. It is safe to call more than once.
func (s *signalSurface) Detach(a *attachment) {
	s.mu.Lock()
	s.attached = slices.DeleteFunc(s.attached, func(x *attachment) bool { return x == a })
	s.mu.Unlock()
	a.release()
}

// ReleaseAll unbinds every stream, letting their handlers return.
func (s *signalSurface) ReleaseAll() {
	s.mu.Lock()
	attached := s.attached
	s.attached = nil
	s.mu.Unlock()

	for _, a := range attached {
		a.release()
	}
}

// Value implements contact.Surface.
func (s *signalSurface) Value(name contact.FieldName) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}

// Invalid implements contact.Surface.
func (s *signalSurface) Invalid(name contact.FieldName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[name] != ""
}

// SetFieldError implements contact.Surface.
func (s *signalSurface) SetFieldError(name contact.FieldName, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[name] = message
	s.writeLocked(map[string]any{
		"errors": map[string]any{string(name): message},
	})
}

// SetFormVisible implements contact.Surface.
func (s *signalSurface) SetFormVisible(visible bool) {
	s.emit(map[string]any{"formHidden": !visible})
}

// SetSuccessVisible implements contact.Surface.
func (s *signalSurface) SetSuccessVisible(visible bool) {
	s.emit(map[string]any{"showSuccess": visible})
}

// ClearFields implements contact.Surface.
func (s *signalSurface) ClearFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch := make(map[string]any, len(contact.Fields))
	for _, name := range contact.Fields {
		s.values[name] = ""
		patch[string(name)] = ""
	}
	s.writeLocked(patch)
}

// Navigate implements contact.Surface. The page runs a data-effect that
// assigns window.location whenever navSeq changes.
func (s *signalSurface) Navigate(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navSeq++
	s.writeLocked(map[string]any{"mailto": uri, "navSeq": s.navSeq})
}

func (s *signalSurface) emit(patch map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(patch)
}

// writeLocked sends patch to the newest attached stream. Streams that fail
// are dropped; with none left the patch is merged into the pending patch.
func (s *signalSurface) writeLocked(patch map[string]any) {
	for len(s.attached) > 0 {
		a := s.attached[len(s.attached)-1]
		err := a.sink.PatchSignals(patch)
		if err == nil {
			return
		}
		s.logger.Debug("dropping signal stream", "error", err)
		s.attached = s.attached[:len(s.attached)-1]
		a.release()
	}
	if s.pending == nil {
		s.pending = make(map[string]any)
	}
	mergePatch(s.pending, patch)
}

// mergePatch folds src into dst with JSON merge-patch semantics for nested objects.
func mergePatch(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		existing, ok := dst[k].(map[string]any)
		if !ok {
			existing = make(map[string]any, len(sub))
			dst[k] = existing
		}
		mergePatch(existing, sub)
	}
}
