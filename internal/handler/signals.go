// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/olegiv/landing-go/internal/contact"
)

// contactSignals is the datastar signal object of the contact section.
type contactSignals struct {
	PageID      string            `json:"pageId"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Subject     string            `json:"subject"`
	Message     string            `json:"message"`
	Errors      map[string]string `json:"errors"`
	FormHidden  bool              `json:"formHidden"`
	ShowSuccess bool              `json:"showSuccess"`
	Mailto      string            `json:"mailto"`
	NavSeq      int               `json:"navSeq"`
}

// newContactSignals returns the initial signals for a freshly rendered page.
func newContactSignals(pageID string) contactSignals {
	errs := make(map[string]string, len(contact.Fields))
	for _, name := range contact.Fields {
		errs[string(name)] = ""
	}
	return contactSignals{PageID: pageID, Errors: errs}
}

func (s contactSignals) value(name contact.FieldName) string {
	switch name {
	case contact.FieldFullName:
		return s.Name
	case contact.FieldEmail:
		return s.Email
	case contact.FieldSubject:
		return s.Subject
	case contact.FieldMessage:
		return s.Message
	}
	return ""
}

func (s *contactSignals) setValue(name contact.FieldName, v string) {
	switch name {
	case contact.FieldFullName:
		s.Name = v
	case contact.FieldEmail:
		s.Email = v
	case contact.FieldSubject:
		s.Subject = v
	case contact.FieldMessage:
		s.Message = v
	}
}

// isDatastarRequest reports whether r was issued by the datastar client.
func isDatastarRequest(r *http.Request) bool {
	return r.Header.Get(headerDatastarRequest) == "true"
}

// readSignals decodes the contact signals of a datastar request.
func readSignals(w http.ResponseWriter, r *http.Request) (contactSignals, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSignalsBytes)
	var sig contactSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		return contactSignals{}, fmt.Errorf("reading signals: %w", err)
	}
	return sig, nil
}
