// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package contact implements the contact form workflow of the landing site:
// per-field validation, the immutable submission snapshot, the mailto handoff
// and the controller that drives the form's visible state.
package contact

// FieldName identifies a contact form input.
type FieldName string

// Contact form fields.
const (
	FieldFullName FieldName = "name"
	FieldEmail    FieldName = "email"
	FieldSubject  FieldName = "subject"
	FieldMessage  FieldName = "message"
)

// Fields lists the form inputs in document order.
var Fields = []FieldName{FieldFullName, FieldEmail, FieldSubject, FieldMessage}

// IsKnownField reports whether name is one of the contact form inputs.
func IsKnownField(name string) bool {
	for _, f := range Fields {
		if string(f) == name {
			return true
		}
	}
	return false
}

// Validity is the validation state of a single field.
type Validity int

// Field validity states.
const (
	Valid Validity = iota
	InvalidRequired
	InvalidFormat
)

// String returns the state name used in logs.
func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case InvalidRequired:
		return "invalid-required"
	case InvalidFormat:
		return "invalid-format"
	default:
		return "unknown"
	}
}

// Field is a named input together with its current raw value.
type Field struct {
	Name  FieldName
	Value string
}
