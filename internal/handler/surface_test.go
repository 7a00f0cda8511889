// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/olegiv/landing-go/internal/contact"
	"github.com/olegiv/landing-go/internal/testutil"
)

// recordingSink collects patches, optionally failing every write.
type recordingSink struct {
	patches []map[string]any
	fail    bool
}

func (s *recordingSink) PatchSignals(patch map[string]any) error {
	if s.fail {
		return errors.New("client went away")
	}
	s.patches = append(s.patches, patch)
	return nil
}

func TestSignalSurface_LoadAndRead(t *testing.T) {
	s := newSignalSurface(testutil.TestLoggerSilent())
	sig := newContactSignals(newPageID())
	sig.Email = "jane@x.com"
	sig.Errors["subject"] = contact.MessageRequired
	s.Load(sig)

	if got := s.Value(contact.FieldEmail); got != "jane@x.com" {
		t.Errorf("Value(email) = %q", got)
	}
	if !s.Invalid(contact.FieldSubject) {
		t.Error("subject should be invalid")
	}
	if s.Invalid(contact.FieldEmail) {
		t.Error("email should be valid")
	}
}

func TestSignalSurface_QueuesUntilAttached(t *testing.T) {
	s := newSignalSurface(testutil.TestLoggerSilent())

	s.SetSuccessVisible(false)
	s.SetFormVisible(true)
	s.SetFieldError(contact.FieldEmail, "")
	s.SetFieldError(contact.FieldName, contact.MessageRequired)

	sink := &recordingSink{}
	a := s.Attach(sink)
	defer s.Detach(a)

	want := []map[string]any{{
		"showSuccess": false,
		"formHidden":  false,
		"errors": map[string]any{
			"email": "",
			"name":  contact.MessageRequired,
		},
	}}
	if diff := cmp.Diff(want, sink.patches); diff != "" {
		t.Errorf("flushed patches mismatch (-want +got):\n%s", diff)
	}

	s.SetSuccessVisible(true)
	if len(sink.patches) != 2 {
		t.Errorf("got %d patches, want 2", len(sink.patches))
	}
}

func TestSignalSurface_NewestStreamWins(t *testing.T) {
	s := newSignalSurface(testutil.TestLoggerSilent())
	long := &recordingSink{}
	short := &recordingSink{}

	la := s.Attach(long)
	sa := s.Attach(short)
	s.SetFormVisible(false)
	s.Detach(sa)
	s.SetFormVisible(true)

	if diff := cmp.Diff([]map[string]any{{"formHidden": true}}, short.patches); diff != "" {
		t.Errorf("short stream mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]map[string]any{{"formHidden": false}}, long.patches); diff != "" {
		t.Errorf("long stream mismatch (-want +got):\n%s", diff)
	}

	select {
	case <-sa.Released():
	default:
		t.Error("detached stream should be released")
	}
	s.ReleaseAll()
	select {
	case <-la.Released():
	default:
		t.Error("ReleaseAll should release the remaining stream")
	}
	s.Detach(la)
}

func TestSignalSurface_FailingStreamIsDropped(t *testing.T) {
	s := newSignalSurface(testutil.TestLoggerSilent())
	good := &recordingSink{}
	bad := &recordingSink{fail: true}

	s.Attach(good)
	ba := s.Attach(bad)
	s.SetSuccessVisible(true)

	select {
	case <-ba.Released():
	default:
		t.Error("failing stream should be released")
	}
	if diff := cmp.Diff([]map[string]any{{"showSuccess": true}}, good.patches); diff != "" {
		t.Errorf("fallback stream mismatch (-want +got):\n%s", diff)
	}
}

func TestSignalSurface_ClearFieldsAndNavigate(t *testing.T) {
	s := newSignalSurface(testutil.TestLoggerSilent())
	sig := validSignals(newPageID())
	s.Load(sig)
	sink := &recordingSink{}
	s.Attach(sink)

	s.ClearFields()
	s.Navigate("mailto:a@b.c")
	s.Navigate("mailto:a@b.c")

	for _, name := range contact.Fields {
		if v := s.Value(name); v != "" {
			t.Errorf("Value(%s) = %q after ClearFields", name, v)
		}
	}
	want := []map[string]any{
		{"name": "", "email": "", "subject": "", "message": ""},
		{"mailto": "mailto:a@b.c", "navSeq": 1},
		{"mailto": "mailto:a@b.c", "navSeq": 2},
	}
	if diff := cmp.Diff(want, sink.patches); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestMergePatch(t *testing.T) {
	dst := map[string]any{"a": 1, "errors": map[string]any{"name": "x"}}
	mergePatch(dst, map[string]any{"b": 2, "errors": map[string]any{"email": "y"}})
	mergePatch(dst, map[string]any{"a": 3, "errors": map[string]any{"name": ""}})

	want := map[string]any{
		"a":      3,
		"b":      2,
		"errors": map[string]any{"name": "", "email": "y"},
	}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("mergePatch mismatch (-want +got):\n%s", diff)
	}
}
