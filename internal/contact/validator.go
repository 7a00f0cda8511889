// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"regexp"
	"strings"
	"unicode"
)

// Inline error messages shown next to a field.
const (
	MessageRequired     = "This field is required"
	MessageInvalidEmail = "Please enter a valid email address"
)

// jsSpace is the character class matched by \s in browser regular expressions:
// ASCII whitespace, vertical tab, all Unicode separators and the BOM.
const jsSpace = `\s\v\p{Z}\x{FEFF}`

// emailPattern is one "@", a dot somewhere in the domain part, no whitespace.
var emailPattern = regexp.MustCompile(`^[^@` + jsSpace + `]+@[^@` + jsSpace + `]+\.[^@` + jsSpace + `]+$`)

func isJSSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Result is the outcome of validating a single field.
type Result struct {
	Validity Validity
	Message  string
}

// Valid reports whether the field passed validation.
func (r Result) Valid() bool {
	return r.Validity == Valid
}

// Err maps the result onto the package's sentinel errors.
func (r Result) Err() error {
	switch r.Validity {
	case InvalidRequired:
		return ErrEmptyField
	case InvalidFormat:
		return ErrInvalidEmailFormat
	default:
		return nil
	}
}

// Validate checks one field. Every field is required; only the email field
// has a format rule, and it is applied to the untrimmed value.
func Validate(f Field) Result {
	if strings.TrimFunc(f.Value, isJSSpace) == "" {
		return Result{Validity: InvalidRequired, Message: MessageRequired}
	}
	if f.Name == FieldEmail && !emailPattern.MatchString(f.Value) {
		return Result{Validity: InvalidFormat, Message: MessageInvalidEmail}
	}
	return Result{Validity: Valid}
}

// ValidateAll validates every contact field. Missing values count as empty.
// The returned error is a *ValidationError when any field is invalid.
func ValidateAll(values map[FieldName]string) (map[FieldName]Result, error) {
	results := make(map[FieldName]Result, len(Fields))
	ok := true
	for _, name := range Fields {
		res := Validate(Field{Name: name, Value: values[name]})
		results[name] = res
		if !res.Valid() {
			ok = false
		}
	}
	if !ok {
		return results, &ValidationError{Fields: results}
	}
	return results, nil
}
