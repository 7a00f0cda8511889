// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/landing-go/internal/contact"
	"github.com/olegiv/landing-go/internal/session"
)

const expectedMailto = "mailto:hello@holdingdevs.com?subject=Hi&body=Name%3A%20Jane%0AEmail%3A%20jane%40x.com%0A%0AMessage%3A%0AHello"

var pageIDPattern = regexp.MustCompile(`&#34;pageId&#34;:&#34;([0-9a-f-]{36})&#34;`)

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	m := pageIDPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "page id missing from signals")
	assert.True(t, session.ValidID(m[1]))

	assert.Contains(t, body, `id="contactForm"`)
	assert.Contains(t, body, `data-on:blur="@post('/contact/blur/email')"`)
	assert.Contains(t, body, `id="successMessage"`)
	assert.Contains(t, body, contact.Recipient)
	assert.Equal(t, 0, env.pages.Len(), "GET / must not create a page session")
}

func TestHome_DistinctPageIDs(t *testing.T) {
	env := newTestEnv(t)

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		m := pageIDPattern.FindStringSubmatch(w.Body.String())
		require.NotNil(t, m)
		ids[m[1]] = true
	}
	assert.Len(t, ids, 3)
}

func TestBlur(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  map[string]any
	}{
		{
			name:  "empty email is required",
			field: "email",
			value: "",
			want:  map[string]any{"errors": map[string]any{"email": contact.MessageRequired}},
		},
		{
			name:  "bad email format",
			field: "email",
			value: "not-an-email",
			want:  map[string]any{"errors": map[string]any{"email": contact.MessageInvalidEmail}},
		},
		{
			name:  "whitespace subject",
			field: "subject",
			value: "   ",
			want:  map[string]any{"errors": map[string]any{"subject": contact.MessageRequired}},
		},
		{
			name:  "valid name clears",
			field: "name",
			value: "Jane",
			want:  map[string]any{"errors": map[string]any{"name": ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			sig := newContactSignals(newPageID())
			sig.setValue(contact.FieldName(tt.field), tt.value)

			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, datastarRequest(t, "/contact/blur/"+tt.field, sig))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
			if diff := cmp.Diff(tt.want, mergedPatches(signalPatches(t, w.Body.String()))); diff != "" {
				t.Errorf("patches mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 1, env.pages.Len())
		})
	}
}

func TestBlur_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, datastarRequest(t, "/contact/blur/phone", newContactSignals(newPageID())))
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown field")

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, datastarRequest(t, "/contact/blur/email", newContactSignals("not-a-page")))
	assert.Equal(t, http.StatusBadRequest, w.Code, "invalid page id")

	req := httptest.NewRequest(http.MethodPost, "/contact/blur/email", strings.NewReader("{"))
	req.Header.Set(headerDatastarRequest, "true")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed signals")

	assert.Equal(t, 0, env.pages.Len())
}

func TestInput(t *testing.T) {
	env := newTestEnv(t)
	pageID := newPageID()

	t.Run("field not marked invalid", func(t *testing.T) {
		sig := newContactSignals(pageID)
		sig.Email = "not-an-email"

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, datastarRequest(t, "/contact/input/email", sig))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, signalPatches(t, w.Body.String()))
	})

	t.Run("invalid field becomes valid", func(t *testing.T) {
		sig := newContactSignals(pageID)
		sig.Email = "jane@x.com"
		sig.Errors["email"] = contact.MessageInvalidEmail

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, datastarRequest(t, "/contact/input/email", sig))

		want := []map[string]any{{"errors": map[string]any{"email": ""}}}
		if diff := cmp.Diff(want, signalPatches(t, w.Body.String())); diff != "" {
			t.Errorf("patches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid field still invalid", func(t *testing.T) {
		sig := newContactSignals(pageID)
		sig.Email = "jane@"
		sig.Errors["email"] = contact.MessageRequired

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, datastarRequest(t, "/contact/input/email", sig))

		want := []map[string]any{{"errors": map[string]any{"email": contact.MessageInvalidEmail}}}
		if diff := cmp.Diff(want, signalPatches(t, w.Body.String())); diff != "" {
			t.Errorf("patches mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSubmit_DatastarInvalid(t *testing.T) {
	env := newTestEnv(t)
	sig := validSignals(newPageID())
	sig.Email = "jane@x"
	sig.Message = " "

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, datastarRequest(t, RouteContact, sig))

	require.Equal(t, http.StatusOK, w.Code)
	want := map[string]any{
		"errors": map[string]any{
			"name":    "",
			"email":   contact.MessageInvalidEmail,
			"subject": "",
			"message": contact.MessageRequired,
		},
	}
	if diff := cmp.Diff(want, mergedPatches(signalPatches(t, w.Body.String()))); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, contact.StateIdle, env.page(t, sig.PageID).ctrl.State())
	assert.Equal(t, 0, env.clock.Pending(), "no revert timer for a rejected submit")
}

func TestSubmit_DatastarSuccess(t *testing.T) {
	env := newTestEnv(t)
	sig := validSignals(newPageID())

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		env.router.ServeHTTP(w, datastarRequest(t, RouteContact, sig))
	}()

	require.Eventually(t, func() bool { return env.clock.Pending() == 1 }, time.Second, time.Millisecond)

	select {
	case <-done:
		t.Fatal("stream closed before the form was restored")
	case <-time.After(20 * time.Millisecond):
	}

	page := env.page(t, sig.PageID)
	assert.Equal(t, contact.StateShowingSuccess, page.ctrl.State())

	env.clock.Advance(contact.RevertDelay - time.Millisecond)
	assert.Equal(t, contact.StateShowingSuccess, page.ctrl.State())
	env.clock.Advance(time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream still open after the revert")
	}

	patches := signalPatches(t, w.Body.String())
	want := []map[string]any{
		{"errors": map[string]any{"name": ""}},
		{"errors": map[string]any{"email": ""}},
		{"errors": map[string]any{"subject": ""}},
		{"errors": map[string]any{"message": ""}},
		{"formHidden": true},
		{"showSuccess": true},
		{"name": "", "email": "", "subject": "", "message": ""},
		{"mailto": expectedMailto, "navSeq": float64(1)},
		{"showSuccess": false},
		{"formHidden": false},
	}
	if diff := cmp.Diff(want, patches); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, contact.StateIdle, page.ctrl.State())
}

func TestSubmit_ResubmitSupersedesStream(t *testing.T) {
	env := newTestEnv(t)
	sig := validSignals(newPageID())

	run := func() (*httptest.ResponseRecorder, chan struct{}) {
		w := httptest.NewRecorder()
		done := make(chan struct{})
		go func() {
			defer close(done)
			env.router.ServeHTTP(w, datastarRequest(t, RouteContact, sig))
		}()
		return w, done
	}

	_, done1 := run()
	require.Eventually(t, func() bool { return env.clock.Pending() == 1 }, time.Second, time.Millisecond)
	page := env.page(t, sig.PageID)

	env.clock.Advance(3 * time.Second)
	w2, done2 := run()

	select {
	case <-done1:
	case <-time.After(time.Second):
		t.Fatal("first stream was not released by the second submission")
	}
	require.Eventually(t, func() bool { return navSeq(page) == 2 }, time.Second, time.Millisecond)
	// State waits for the second Submit to finish re-arming the timer.
	assert.Equal(t, contact.StateShowingSuccess, page.ctrl.State())
	assert.Equal(t, 1, env.clock.Pending(), "the first timer must be replaced")

	// The original deadline passes without a revert.
	env.clock.Advance(2 * time.Second)
	assert.Equal(t, contact.StateShowingSuccess, page.ctrl.State())

	env.clock.Advance(3 * time.Second)
	select {
	case <-done2:
	case <-time.After(time.Second):
		t.Fatal("second stream still open after the revert")
	}

	merged := mergedPatches(signalPatches(t, w2.Body.String()))
	assert.Equal(t, false, merged["showSuccess"])
	assert.Equal(t, false, merged["formHidden"])
	assert.Equal(t, float64(2), merged["navSeq"])
}

func TestSubmit_PageCloseReleasesStream(t *testing.T) {
	env := newTestEnv(t)
	sig := validSignals(newPageID())

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.router.ServeHTTP(httptest.NewRecorder(), datastarRequest(t, RouteContact, sig))
	}()
	require.Eventually(t, func() bool { return env.clock.Pending() == 1 }, time.Second, time.Millisecond)

	env.pages.Delete(sig.PageID)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closing the page did not release the stream")
	}
	assert.Equal(t, 0, env.clock.Pending())
}

func TestSubmit_FormFallbackInvalid(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, formRequest(url.Values{
		"name":    {"Jane <script>"},
		"email":   {"nope"},
		"subject": {""},
		"message": {"Hello"},
	}))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, contact.MessageRequired)
	assert.Contains(t, body, contact.MessageInvalidEmail)
	assert.Contains(t, body, `value="Jane &lt;script&gt;"`)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `class="error"`)
	assert.Equal(t, 0, env.pages.Len())
}

func TestSubmit_FormFallbackSuccess(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, formRequest(url.Values{
		"name":    {"Jane"},
		"email":   {"jane@x.com"},
		"subject": {"Hi"},
		"message": {"Hello"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Thank you!")
	assert.Contains(t, body, "Open your email client")

	hrefs := regexp.MustCompile(`href="(mailto:[^"]+)"`).FindStringSubmatch(body)
	require.NotNil(t, hrefs, "mailto link missing")
	got, err := url.Parse(html.UnescapeString(hrefs[1]))
	require.NoError(t, err)
	q := got.Query()
	assert.Equal(t, "hello@holdingdevs.com", got.Opaque)
	assert.Equal(t, "Hi", q.Get("subject"))
	assert.Equal(t, "Name: Jane\nEmail: jane@x.com\n\nMessage:\nHello", q.Get("body"))
}
