package domain

import (
	"net/url"
	"strings"
)

// SubscriberEmail is a syntactically valid email address. The zero value is
// invalid; obtain one through ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates the syntax of a raw email address. It checks
// shape and the RFC length limits (64-char local part, 253-char domain,
// 254 overall); it makes no attempt to verify that the mailbox exists.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	email := strings.TrimSpace(raw)
	if !validEmailSyntax(email) {
		return SubscriberEmail{}, &ValidationError{Field: "email", Reason: "not a valid email address"}
	}
	return SubscriberEmail{value: email}, nil
}

// String returns a read-only view of the validated address.
func (e SubscriberEmail) String() string { return e.value }

func validEmailSyntax(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}

	local, domain := parts[0], parts[1]
	if len(local) == 0 || len(local) > 64 {
		return false
	}
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}

	_, err := url.Parse("mailto:" + email)
	return err == nil
}
