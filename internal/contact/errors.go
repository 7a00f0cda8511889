// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"errors"
	"fmt"
	"strings"
)

// Field-level validation errors.
var (
	ErrEmptyField         = errors.New("field is required")
	ErrInvalidEmailFormat = errors.New("invalid email address")
)

// ErrInvalidForm is matched by every *ValidationError.
var ErrInvalidForm = errors.New("contact form is invalid")

// ValidationError reports the fields that blocked a submission.
type ValidationError struct {
	Fields map[FieldName]Result
}

// Error lists the failing fields in document order.
func (e *ValidationError) Error() string {
	var parts []string
	for _, name := range Fields {
		if res, ok := e.Fields[name]; ok && !res.Valid() {
			parts = append(parts, fmt.Sprintf("%s: %s", name, res.Validity))
		}
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidForm.Error(), strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrInvalidForm.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

// Messages returns the inline error message of every invalid field.
func (e *ValidationError) Messages() map[FieldName]string {
	out := make(map[FieldName]string, len(e.Fields))
	for name, res := range e.Fields {
		if !res.Valid() {
			out[name] = res.Message
		}
	}
	return out
}
