// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import "fmt"

// Snapshot is the set of field values captured at submission time.
// It can only be built from values that pass validation.
type Snapshot struct {
	name    string
	email   string
	subject string
	message string
}

// NewSnapshot validates values and captures them. It returns a
// *ValidationError when any field is invalid.
func NewSnapshot(values map[FieldName]string) (Snapshot, error) {
	if _, err := ValidateAll(values); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		name:    values[FieldFullName],
		email:   values[FieldEmail],
		subject: values[FieldSubject],
		message: values[FieldMessage],
	}, nil
}

// Name returns the sender name.
func (s Snapshot) Name() string { return s.name }

// Email returns the sender address.
func (s Snapshot) Email() string { return s.email }

// Subject returns the message subject.
func (s Snapshot) Subject() string { return s.subject }

// Message returns the message text.
func (s Snapshot) Message() string { return s.message }

// Body renders the outgoing message body.
func (s Snapshot) Body() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", s.name, s.email, s.message)
}
