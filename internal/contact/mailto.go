// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import "strings"

// Recipient receives every contact message.
const Recipient = "hello@holdingdevs.com"

// MailtoURI builds the mailto link handed to the visitor's mail client.
func MailtoURI(recipient string, s Snapshot) string {
	var sb strings.Builder
	sb.WriteString("mailto:")
	sb.WriteString(recipient)
	sb.WriteString("?subject=")
	sb.WriteString(EncodeURIComponent(s.Subject()))
	sb.WriteString("&body=")
	sb.WriteString(EncodeURIComponent(s.Body()))
	return sb.String()
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way browsers do for a single URI
// component: everything except ASCII letters, digits and -_.!~*'() is escaped
// byte by byte from its UTF-8 form.
func EncodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
